package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// ClaimResult reports the outcome of a claim.
type ClaimResult struct {
	Payout    int64 // net trade payout transferred to the claimant
	JuryShare int64 // jury fee credited to the pending balance
	Fee       int64 // resolution fee withheld from the payout
}

// proRata returns shares * pool / supply, floored, using wide intermediates.
func proRata(shares, pool, supply int64) int64 {
	if shares <= 0 || pool <= 0 || supply <= 0 {
		return 0
	}
	v := new(big.Int).Mul(big.NewInt(shares), big.NewInt(pool))
	v.Div(v, big.NewInt(supply))
	return v.Int64()
}

// Claim pays a resolved market's winnings: the claimant's share of the
// pool snapshot taken at finalize time, minus the flat resolution fee,
// plus any jury fee owed for a winning vote. Payout denominators are the
// finalize-time snapshots, so claim ordering cannot change anyone's share;
// the live pool is drained by the gross amount. One shot per position.
func (e *Engine) Claim(account common.Address, marketID string) (ClaimResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.store.Market(marketID)
	if err != nil {
		return ClaimResult{}, err
	}
	if m.Status != domain.MarketStatusResolved {
		return ClaimResult{}, domain.ErrNotResolved
	}
	pos := e.store.Position(marketID, account)
	if pos == nil {
		return ClaimResult{}, domain.ErrNothingToClaim
	}
	if pos.Claimed {
		return ClaimResult{}, domain.ErrAlreadyClaimed
	}
	if pos.Refunded {
		return ClaimResult{}, domain.ErrAlreadyRefunded
	}

	winningSide := domain.SideNo
	if *m.Outcome {
		winningSide = domain.SideYes
	}
	payout := proRata(pos.SharesOf(winningSide), m.ResolvedPool, m.WinningSupply)

	jury := int64(0)
	if m.JuryPool > 0 && pos.HasVoted && pos.VotedForDispute == m.JuryForSide {
		jury = proRata(pos.VoteWeight, m.JuryPool, m.JuryWeight)
	}
	if payout == 0 && jury == 0 {
		return ClaimResult{}, domain.ErrNothingToClaim
	}

	fee := e.params.ResolutionFee
	if fee > payout {
		fee = payout
	}
	net := payout - fee

	// Commit.
	now := e.now()
	m.PoolBalance -= payout
	m.UpdatedAt = now
	pos.Claimed = true
	pos.Returned += net
	pos.UpdatedAt = now

	if fee > 0 {
		tw := e.store.Withdrawal(e.treasury)
		tw.Balance += fee
		tw.UpdatedAt = now
	}
	if jury > 0 {
		w := e.store.Withdrawal(account)
		w.Balance += jury
		w.UpdatedAt = now
	}

	e.emit(domain.EventClaimed, m.ID, account, map[string]any{
		"payout":     net,
		"fee":        fee,
		"jury_share": jury,
	})
	return ClaimResult{Payout: net, JuryShare: jury, Fee: fee}, nil
}

// EmergencyRefund exits a stuck market: available from 24h after expiry
// for as long as the market is unresolved. Each claimant receives their
// share of whatever pool remains, proportional to their total shares
// against the market's current total supply; pool and supplies shrink with
// every refund so later claimants are computed against what is left, which
// keeps the pool solvent under any claim ordering.
func (e *Engine) EmergencyRefund(account common.Address, marketID string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.store.Market(marketID)
	if err != nil {
		return 0, err
	}
	if m.Status == domain.MarketStatusResolved {
		return 0, domain.ErrAlreadyResolved
	}
	now := e.now()
	if now.Before(m.ExpiresAt.Add(domain.EmergencyDelay)) {
		return 0, domain.ErrEmergencyNotOpen
	}

	pos := e.store.Position(marketID, account)
	if pos != nil && pos.Refunded {
		return 0, domain.ErrAlreadyRefunded
	}
	if pos == nil || pos.TotalShares() == 0 {
		return 0, domain.ErrNothingToClaim
	}

	refund := proRata(pos.TotalShares(), m.PoolBalance, m.TotalShares())

	// Commit.
	m.PoolBalance -= refund
	m.YesShares -= pos.YesShares
	m.NoShares -= pos.NoShares
	m.UpdatedAt = now
	pos.YesShares = 0
	pos.NoShares = 0
	pos.Refunded = true
	pos.Returned += refund
	pos.UpdatedAt = now

	e.emit(domain.EventRefunded, m.ID, account, map[string]any{
		"refund": refund,
	})
	return refund, nil
}

// WithdrawPending drains the account's pull-pattern balance. The state
// change happens here; the actual value transfer is the caller's, so a
// failing transfer can never corrupt anyone else's accounting.
func (e *Engine) WithdrawPending(account common.Address) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	w := e.store.Withdrawal(account)
	if w.Balance <= 0 {
		return 0, domain.ErrNothingOwed
	}
	amount := w.Balance
	w.Balance = 0
	w.UpdatedAt = e.now()

	e.emit(domain.EventWithdrawal, "", account, map[string]any{
		"kind":   "pending",
		"amount": amount,
	})
	return amount, nil
}

// WithdrawCreatorFees drains the account's accrued creator-fee bucket.
func (e *Engine) WithdrawCreatorFees(account common.Address) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	w := e.store.Withdrawal(account)
	if w.CreatorFees <= 0 {
		return 0, domain.ErrNothingOwed
	}
	amount := w.CreatorFees
	w.CreatorFees = 0
	w.UpdatedAt = e.now()

	e.emit(domain.EventWithdrawal, "", account, map[string]any{
		"kind":   "creator_fees",
		"amount": amount,
	})
	return amount, nil
}
