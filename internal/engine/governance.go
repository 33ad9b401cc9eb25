package engine

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	enginecrypto "github.com/stiliyangoshev97/JNGLZ-sub004/internal/crypto"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// ProposeParameterChange opens a typed parameter change. The proposer must
// be a committee member and sign the proposal digest; their signature
// counts as the first confirmation. With a single-member committee the
// change applies immediately.
func (e *Engine) ProposeParameterChange(signer common.Address, t domain.ActionType, value int64, sig []byte) (domain.GovernanceAction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isSigner(signer) {
		return domain.GovernanceAction{}, domain.ErrNotSigner
	}
	if !t.Valid() {
		return domain.GovernanceAction{}, domain.ErrInvalidAction
	}
	if err := enginecrypto.VerifyDigest(enginecrypto.ProposalDigest(string(t), value, signer), sig, signer); err != nil {
		return domain.GovernanceAction{}, fmt.Errorf("%w: %s", domain.ErrBadSignature, err)
	}

	// Fail fast on values the apply step would reject anyway.
	if _, err := e.paramsWith(t, value); err != nil {
		return domain.GovernanceAction{}, err
	}

	now := e.now()
	a := &domain.GovernanceAction{
		ID:         e.newID(),
		Type:       t,
		Value:      value,
		ProposedBy: signer,
		Confirmed:  map[common.Address]bool{signer: true},
		ExpiresAt:  now.Add(domain.GovernanceActionTTL),
		CreatedAt:  now,
	}
	e.store.PutAction(a)

	e.emit(domain.EventParamsProposed, "", signer, map[string]any{
		"action_id": a.ID,
		"type":      string(t),
		"value":     value,
	})

	if a.Confirmations() == len(e.signers) {
		if err := e.applyAction(a); err != nil {
			return domain.GovernanceAction{}, err
		}
	}
	return copyAction(a), nil
}

// ConfirmAction records one committee member's confirmation. The moment
// the last member confirms, the change applies atomically; the apply step
// re-checks the hard caps and fails loudly if they are violated.
func (e *Engine) ConfirmAction(signer common.Address, actionID string, sig []byte) (domain.GovernanceAction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isSigner(signer) {
		return domain.GovernanceAction{}, domain.ErrNotSigner
	}
	a, err := e.store.Action(actionID)
	if err != nil {
		return domain.GovernanceAction{}, err
	}
	if a.Executed {
		return domain.GovernanceAction{}, domain.ErrActionExecuted
	}
	now := e.now()
	if a.Expired(now) {
		return domain.GovernanceAction{}, domain.ErrActionExpired
	}
	if a.ConfirmedBy(signer) {
		return domain.GovernanceAction{}, domain.ErrAlreadyConfirmed
	}
	if err := enginecrypto.VerifyDigest(enginecrypto.ConfirmationDigest(actionID, signer), sig, signer); err != nil {
		return domain.GovernanceAction{}, fmt.Errorf("%w: %s", domain.ErrBadSignature, err)
	}

	a.Confirmed[signer] = true

	if a.Confirmations() == len(e.signers) {
		if err := e.applyAction(a); err != nil {
			// Roll the confirmation back so the failure leaves no trace.
			delete(a.Confirmed, signer)
			return domain.GovernanceAction{}, err
		}
	}
	return copyAction(a), nil
}

// GovernanceAction returns a snapshot of an action.
func (e *Engine) GovernanceAction(id string) (domain.GovernanceAction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, err := e.store.Action(id)
	if err != nil {
		return domain.GovernanceAction{}, err
	}
	return copyAction(a), nil
}

// GovernanceActions returns snapshots of all actions, newest first.
func (e *Engine) GovernanceActions(opts domain.ListOpts) []domain.GovernanceAction {
	e.mu.Lock()
	defer e.mu.Unlock()
	all := e.store.Actions()
	if opts.Offset > 0 {
		if opts.Offset >= len(all) {
			return nil
		}
		all = all[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	out := make([]domain.GovernanceAction, len(all))
	for i, a := range all {
		out[i] = copyAction(a)
	}
	return out
}

// paramsWith returns the current parameter set with one field replaced,
// validated against the hard caps.
func (e *Engine) paramsWith(t domain.ActionType, value int64) (domain.Params, error) {
	p := e.params
	switch t {
	case domain.ActionSetPlatformFeeBps:
		p.PlatformFeeBps = value
	case domain.ActionSetCreatorFeeBps:
		p.CreatorFeeBps = value
	case domain.ActionSetProposerRewardBps:
		p.ProposerRewardBps = value
	case domain.ActionSetMinBond:
		p.MinBond = value
	case domain.ActionSetBondBps:
		p.BondBps = value
	case domain.ActionSetResolutionFee:
		p.ResolutionFee = value
	case domain.ActionSetCreatorWindowSec:
		p.CreatorWindow = time.Duration(value) * time.Second
	default:
		return domain.Params{}, domain.ErrInvalidAction
	}
	if err := p.Validate(); err != nil {
		return domain.Params{}, err
	}
	return p, nil
}

// applyAction applies a fully-confirmed action.
func (e *Engine) applyAction(a *domain.GovernanceAction) error {
	p, err := e.paramsWith(a.Type, a.Value)
	if err != nil {
		return err
	}
	e.params = p
	a.Executed = true

	e.emit(domain.EventParamsChanged, "", a.ProposedBy, map[string]any{
		"action_id": a.ID,
		"type":      string(a.Type),
		"value":     a.Value,
	})
	return nil
}

// copyAction deep-copies an action so callers cannot mutate the
// confirmation set behind the engine's lock.
func copyAction(a *domain.GovernanceAction) domain.GovernanceAction {
	out := *a
	out.Confirmed = make(map[common.Address]bool, len(a.Confirmed))
	for k, v := range a.Confirmed {
		out.Confirmed[k] = v
	}
	return out
}
