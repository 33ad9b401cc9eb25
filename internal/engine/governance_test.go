package engine

import (
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enginecrypto "github.com/stiliyangoshev97/JNGLZ-sub004/internal/crypto"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

type signerKey struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

func newSignerKey(t *testing.T) signerKey {
	t.Helper()
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	return signerKey{key: key, addr: ethcrypto.PubkeyToAddress(key.PublicKey)}
}

func (s signerKey) proposeSig(t *testing.T, action domain.ActionType, value int64) []byte {
	t.Helper()
	sig, err := enginecrypto.SignDigest(enginecrypto.ProposalDigest(string(action), value, s.addr), s.key)
	require.NoError(t, err)
	return sig
}

func (s signerKey) confirmSig(t *testing.T, actionID string) []byte {
	t.Helper()
	sig, err := enginecrypto.SignDigest(enginecrypto.ConfirmationDigest(actionID, s.addr), s.key)
	require.NoError(t, err)
	return sig
}

func TestProposeParameterChangeGuards(t *testing.T) {
	s1 := newSignerKey(t)
	outsider := newSignerKey(t)
	f := newFixture(t, s1.addr)

	_, err := f.e.ProposeParameterChange(outsider.addr, domain.ActionSetPlatformFeeBps, 200,
		outsider.proposeSig(t, domain.ActionSetPlatformFeeBps, 200))
	assert.ErrorIs(t, err, domain.ErrNotSigner)

	_, err = f.e.ProposeParameterChange(s1.addr, domain.ActionType("set_moon_phase"), 1,
		s1.proposeSig(t, domain.ActionType("set_moon_phase"), 1))
	assert.ErrorIs(t, err, domain.ErrInvalidAction)

	// Signature over a different value does not verify.
	_, err = f.e.ProposeParameterChange(s1.addr, domain.ActionSetPlatformFeeBps, 200,
		s1.proposeSig(t, domain.ActionSetPlatformFeeBps, 300))
	assert.ErrorIs(t, err, domain.ErrBadSignature)

	// Values beyond the hard caps are rejected at proposal time.
	_, err = f.e.ProposeParameterChange(s1.addr, domain.ActionSetPlatformFeeBps, domain.MaxPlatformFeeBps+1,
		s1.proposeSig(t, domain.ActionSetPlatformFeeBps, domain.MaxPlatformFeeBps+1))
	assert.ErrorIs(t, err, domain.ErrParamOutOfBounds)
}

func TestSingleSignerAppliesImmediately(t *testing.T) {
	s1 := newSignerKey(t)
	f := newFixture(t, s1.addr)

	a, err := f.e.ProposeParameterChange(s1.addr, domain.ActionSetPlatformFeeBps, 200,
		s1.proposeSig(t, domain.ActionSetPlatformFeeBps, 200))
	require.NoError(t, err)
	assert.True(t, a.Executed)
	assert.Equal(t, int64(200), f.e.Params().PlatformFeeBps)
	assert.Len(t, f.eventsOfType(domain.EventParamsChanged), 1)
}

func TestTwoSignerConfirmFlow(t *testing.T) {
	s1 := newSignerKey(t)
	s2 := newSignerKey(t)
	f := newFixture(t, s1.addr, s2.addr)
	before := f.e.Params().MinBond

	a, err := f.e.ProposeParameterChange(s1.addr, domain.ActionSetMinBond, units(25),
		s1.proposeSig(t, domain.ActionSetMinBond, units(25)))
	require.NoError(t, err)
	assert.False(t, a.Executed)
	assert.Equal(t, 1, a.Confirmations())
	assert.Equal(t, before, f.e.Params().MinBond, "change must wait for every signer")

	// The proposer cannot confirm twice.
	_, err = f.e.ConfirmAction(s1.addr, a.ID, s1.confirmSig(t, a.ID))
	assert.ErrorIs(t, err, domain.ErrAlreadyConfirmed)

	// A wrong signature from the right signer does not count.
	_, err = f.e.ConfirmAction(s2.addr, a.ID, s2.confirmSig(t, "other-action"))
	assert.ErrorIs(t, err, domain.ErrBadSignature)

	got, err := f.e.ConfirmAction(s2.addr, a.ID, s2.confirmSig(t, a.ID))
	require.NoError(t, err)
	assert.True(t, got.Executed)
	assert.Equal(t, units(25), f.e.Params().MinBond)

	_, err = f.e.ConfirmAction(s2.addr, a.ID, s2.confirmSig(t, a.ID))
	assert.ErrorIs(t, err, domain.ErrActionExecuted)
}

func TestConfirmGuards(t *testing.T) {
	s1 := newSignerKey(t)
	s2 := newSignerKey(t)
	outsider := newSignerKey(t)
	f := newFixture(t, s1.addr, s2.addr)

	a, err := f.e.ProposeParameterChange(s1.addr, domain.ActionSetBondBps, 750,
		s1.proposeSig(t, domain.ActionSetBondBps, 750))
	require.NoError(t, err)

	_, err = f.e.ConfirmAction(outsider.addr, a.ID, outsider.confirmSig(t, a.ID))
	assert.ErrorIs(t, err, domain.ErrNotSigner)

	_, err = f.e.ConfirmAction(s2.addr, "missing", s2.confirmSig(t, "missing"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.clk.Advance(domain.GovernanceActionTTL)
	_, err = f.e.ConfirmAction(s2.addr, a.ID, s2.confirmSig(t, a.ID))
	assert.ErrorIs(t, err, domain.ErrActionExpired)
}

func TestCreatorWindowChange(t *testing.T) {
	s1 := newSignerKey(t)
	f := newFixture(t, s1.addr)

	_, err := f.e.ProposeParameterChange(s1.addr, domain.ActionSetCreatorWindowSec, 7200,
		s1.proposeSig(t, domain.ActionSetCreatorWindowSec, 7200))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, f.e.Params().CreatorWindow)
}

func TestActionSnapshotsAreCopies(t *testing.T) {
	s1 := newSignerKey(t)
	s2 := newSignerKey(t)
	f := newFixture(t, s1.addr, s2.addr)

	a, err := f.e.ProposeParameterChange(s1.addr, domain.ActionSetResolutionFee, units(2),
		s1.proposeSig(t, domain.ActionSetResolutionFee, units(2)))
	require.NoError(t, err)

	// Mutating the returned snapshot must not count as a confirmation.
	a.Confirmed[s2.addr] = true
	got, err := f.e.GovernanceAction(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Confirmations())
	assert.False(t, got.Executed)

	all := f.e.GovernanceActions(domain.ListOpts{})
	require.Len(t, all, 1)
	assert.Equal(t, a.ID, all[0].ID)
}
