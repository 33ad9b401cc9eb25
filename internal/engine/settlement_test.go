package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// resolvedMarket drives a traded market through an unopposed YES
// resolution.
func (f *fixture) resolvedMarket(t *testing.T) string {
	t.Helper()
	id := f.tradedMarket(t)
	if _, err := f.e.ProposeOutcome(creator, id, true, f.bondPayment(t, id)); err != nil {
		t.Fatalf("propose: %v", err)
	}
	f.clk.Advance(domain.DisputeWindow)
	if _, err := f.e.FinalizeMarket(id); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return id
}

func TestClaimWinner(t *testing.T) {
	f := newFixture(t)
	id := f.resolvedMarket(t)
	m, err := f.e.Market(id)
	require.NoError(t, err)

	treasuryBefore := f.e.PendingBalance(treasury).Balance
	res, err := f.e.Claim(alice, id)
	require.NoError(t, err)

	// Alice holds the entire winning supply, so she gets the whole pool
	// snapshot minus the flat resolution fee.
	fee := f.e.Params().ResolutionFee
	assert.Equal(t, m.ResolvedPool-fee, res.Payout)
	assert.Equal(t, fee, res.Fee)
	assert.Zero(t, res.JuryShare)
	assert.Equal(t, treasuryBefore+fee, f.e.PendingBalance(treasury).Balance)

	after, err := f.e.Market(id)
	require.NoError(t, err)
	assert.Zero(t, after.PoolBalance)

	_, err = f.e.Claim(alice, id)
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
}

func TestClaimLoserGetsNothing(t *testing.T) {
	f := newFixture(t)
	id := f.resolvedMarket(t)

	_, err := f.e.Claim(bob, id)
	assert.ErrorIs(t, err, domain.ErrNothingToClaim)

	_, err = f.e.Claim(carol, id)
	assert.ErrorIs(t, err, domain.ErrNothingToClaim)
}

func TestClaimUnresolvedMarket(t *testing.T) {
	f := newFixture(t)
	id := f.tradedMarket(t)
	_, err := f.e.Claim(alice, id)
	assert.ErrorIs(t, err, domain.ErrNotResolved)
}

func TestClaimPayoutsNeverExceedPool(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)
	_, err := f.e.Buy(alice, id, domain.SideYes, units(137), 0)
	require.NoError(t, err)
	_, err = f.e.Buy(carol, id, domain.SideYes, units(61), 0)
	require.NoError(t, err)
	_, err = f.e.Buy(bob, id, domain.SideNo, units(99), 0)
	require.NoError(t, err)
	f.clk.Advance(24 * time.Hour)
	_, err = f.e.ProposeOutcome(creator, id, true, f.bondPayment(t, id))
	require.NoError(t, err)
	f.clk.Advance(domain.DisputeWindow)
	_, err = f.e.FinalizeMarket(id)
	require.NoError(t, err)

	m, err := f.e.Market(id)
	require.NoError(t, err)

	r1, err := f.e.Claim(alice, id)
	require.NoError(t, err)
	r2, err := f.e.Claim(carol, id)
	require.NoError(t, err)
	gross := r1.Payout + r1.Fee + r2.Payout + r2.Fee

	assert.LessOrEqual(t, gross, m.ResolvedPool)
	after, err := f.e.Market(id)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, after.PoolBalance, int64(0))
}

func TestClaimJuryShare(t *testing.T) {
	f := newFixture(t)
	id := f.tradedMarket(t)
	payment := f.bondPayment(t, id)
	pm, err := f.e.ProposeOutcome(creator, id, true, payment)
	require.NoError(t, err)
	_, err = f.e.Dispute(bob, id, payment)
	require.NoError(t, err)
	_, err = f.e.Vote(alice, id, true)
	require.NoError(t, err)
	_, err = f.e.Vote(bob, id, true)
	require.NoError(t, err)
	f.clk.Advance(domain.VotingWindow)
	m, err := f.e.FinalizeMarket(id)
	require.NoError(t, err)
	require.True(t, m.JuryPool > 0)

	// NO won; Bob claims both his winning shares and his jury share.
	bobBefore := f.e.PendingBalance(bob).Balance
	res, err := f.e.Claim(bob, id)
	require.NoError(t, err)
	assert.Positive(t, res.Payout)
	assert.Positive(t, res.JuryShare)
	assert.Equal(t, bobBefore+res.JuryShare, f.e.PendingBalance(bob).Balance)

	// Alice lost the market but voted with the jury, so she still collects
	// her jury share.
	aliceRes, err := f.e.Claim(alice, id)
	require.NoError(t, err)
	assert.Zero(t, aliceRes.Payout)
	assert.Positive(t, aliceRes.JuryShare)

	// Jury shares never exceed the escrowed half-bond.
	assert.LessOrEqual(t, res.JuryShare+aliceRes.JuryShare, pm.ProposerBond-pm.ProposerBond/2)
}

func TestEmergencyRefund(t *testing.T) {
	f := newFixture(t)
	id := f.tradedMarket(t)

	_, err := f.e.EmergencyRefund(alice, id)
	assert.ErrorIs(t, err, domain.ErrEmergencyNotOpen)

	f.clk.Advance(domain.EmergencyDelay)
	m, err := f.e.Market(id)
	require.NoError(t, err)
	poolBefore := m.PoolBalance

	r1, err := f.e.EmergencyRefund(alice, id)
	require.NoError(t, err)
	r2, err := f.e.EmergencyRefund(bob, id)
	require.NoError(t, err)

	assert.Positive(t, r1)
	assert.Positive(t, r2)
	assert.LessOrEqual(t, r1+r2, poolBefore)

	after, err := f.e.Market(id)
	require.NoError(t, err)
	assert.Zero(t, after.TotalShares())
	assert.Equal(t, poolBefore-r1-r2, after.PoolBalance)

	_, err = f.e.EmergencyRefund(alice, id)
	assert.ErrorIs(t, err, domain.ErrAlreadyRefunded)
	_, err = f.e.EmergencyRefund(carol, id)
	assert.ErrorIs(t, err, domain.ErrNothingToClaim)
}

func TestEmergencyRefundResolvedMarket(t *testing.T) {
	f := newFixture(t)
	id := f.resolvedMarket(t)
	f.clk.Advance(domain.EmergencyDelay)
	_, err := f.e.EmergencyRefund(alice, id)
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

func TestWithdrawPending(t *testing.T) {
	f := newFixture(t)
	id := f.resolvedMarket(t)
	_, err := f.e.Claim(alice, id)
	require.NoError(t, err)

	_, err = f.e.WithdrawPending(alice)
	assert.ErrorIs(t, err, domain.ErrNothingOwed)

	// The treasury accrued trade fees, two resolution fees, and the claim
	// fee; it drains in one withdrawal.
	bal := f.e.PendingBalance(treasury).Balance
	require.Positive(t, bal)
	got, err := f.e.WithdrawPending(treasury)
	require.NoError(t, err)
	assert.Equal(t, bal, got)
	assert.Zero(t, f.e.PendingBalance(treasury).Balance)

	_, err = f.e.WithdrawPending(treasury)
	assert.ErrorIs(t, err, domain.ErrNothingOwed)
}

func TestWithdrawCreatorFees(t *testing.T) {
	f := newFixture(t)
	id := f.openMarket(t)
	_, err := f.e.Buy(alice, id, domain.SideYes, units(100), 0)
	require.NoError(t, err)

	fees := f.e.PendingBalance(creator).CreatorFees
	require.Positive(t, fees)

	got, err := f.e.WithdrawCreatorFees(creator)
	require.NoError(t, err)
	assert.Equal(t, fees, got)
	assert.Zero(t, f.e.PendingBalance(creator).CreatorFees)

	_, err = f.e.WithdrawCreatorFees(creator)
	assert.ErrorIs(t, err, domain.ErrNothingOwed)
	_, err = f.e.WithdrawCreatorFees(alice)
	assert.ErrorIs(t, err, domain.ErrNothingOwed)
}
