package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ActionType tags a proposed parameter change.
type ActionType string

const (
	ActionSetPlatformFeeBps    ActionType = "set_platform_fee_bps"
	ActionSetCreatorFeeBps     ActionType = "set_creator_fee_bps"
	ActionSetProposerRewardBps ActionType = "set_proposer_reward_bps"
	ActionSetMinBond           ActionType = "set_min_bond"
	ActionSetBondBps           ActionType = "set_bond_bps"
	ActionSetResolutionFee     ActionType = "set_resolution_fee"
	ActionSetCreatorWindowSec  ActionType = "set_creator_window_sec"
)

// Valid reports whether the action type is recognised.
func (t ActionType) Valid() bool {
	switch t {
	case ActionSetPlatformFeeBps, ActionSetCreatorFeeBps,
		ActionSetProposerRewardBps, ActionSetMinBond, ActionSetBondBps,
		ActionSetResolutionFee, ActionSetCreatorWindowSec:
		return true
	}
	return false
}

// GovernanceAction is a typed parameter change awaiting N-of-N
// confirmation. It applies atomically the moment the last committee member
// confirms, and is inert after ExpiresAt.
type GovernanceAction struct {
	ID         string
	Type       ActionType
	Value      int64
	ProposedBy common.Address
	Confirmed  map[common.Address]bool
	Executed   bool
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// ConfirmedBy reports whether the signer has already confirmed.
func (a *GovernanceAction) ConfirmedBy(signer common.Address) bool {
	return a.Confirmed[signer]
}

// Confirmations returns the number of collected confirmations.
func (a *GovernanceAction) Confirmations() int {
	return len(a.Confirmed)
}

// Expired reports whether the action can no longer be confirmed.
func (a *GovernanceAction) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}
