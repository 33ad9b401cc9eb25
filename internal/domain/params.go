package domain

import (
	"fmt"
	"time"
)

// MicroUnit is the number of micro-units in one currency unit (and
// micro-shares in one share). No floating point is used anywhere in the
// engine; every amount is an int64 count of micro-units.
const MicroUnit int64 = 1_000_000

// UnitPrice is the spot price of a share when its probability is 1.0, in
// micro-units. Spot prices therefore read directly as probability in ppm.
const UnitPrice int64 = MicroUnit

// BpsDenominator converts basis points to fractions.
const BpsDenominator int64 = 10_000

// Hard caps enforced whenever a parameter is set, including by governance.
const (
	MaxPlatformFeeBps    int64 = 500
	MaxCreatorFeeBps     int64 = 500
	MaxProposerRewardBps int64 = 500
	MaxBondBps           int64 = 2_000
	MaxResolutionFee     int64 = 10 * MicroUnit
)

// Fixed state-machine windows. These are durations from the preceding
// event, compared against the clock; nothing is scheduled.
const (
	DisputeWindow  = 30 * time.Minute
	VotingWindow   = 60 * time.Minute
	EmergencyDelay = 24 * time.Hour

	// GovernanceActionTTL bounds how long a proposed parameter change can
	// collect confirmations.
	GovernanceActionTTL = 72 * time.Hour
)

// MinTradeAmount is the smallest accepted buy payment.
const MinTradeAmount int64 = 1 * MicroUnit

// MinSellShares is the smallest accepted sell quantity.
const MinSellShares int64 = 1_000

// Params are the governance-tunable economic constants.
type Params struct {
	PlatformFeeBps    int64
	CreatorFeeBps     int64
	ProposerRewardBps int64
	MinBond           int64
	BondBps           int64
	ResolutionFee     int64
	CreatorWindow     time.Duration
}

// DefaultParams returns the launch parameter set.
func DefaultParams() Params {
	return Params{
		PlatformFeeBps:    150,
		CreatorFeeBps:     100,
		ProposerRewardBps: 100,
		MinBond:           10 * MicroUnit,
		BondBps:           500,
		ResolutionFee:     1 * MicroUnit,
		CreatorWindow:     1 * time.Hour,
	}
}

// Validate checks every parameter against its hard cap. Governance applies
// changes through this check and fails loudly on violation.
func (p Params) Validate() error {
	if p.PlatformFeeBps < 0 || p.PlatformFeeBps > MaxPlatformFeeBps {
		return fmt.Errorf("platform fee %d bps: %w", p.PlatformFeeBps, ErrParamOutOfBounds)
	}
	if p.CreatorFeeBps < 0 || p.CreatorFeeBps > MaxCreatorFeeBps {
		return fmt.Errorf("creator fee %d bps: %w", p.CreatorFeeBps, ErrParamOutOfBounds)
	}
	if p.ProposerRewardBps < 0 || p.ProposerRewardBps > MaxProposerRewardBps {
		return fmt.Errorf("proposer reward %d bps: %w", p.ProposerRewardBps, ErrParamOutOfBounds)
	}
	if p.MinBond < 0 {
		return fmt.Errorf("min bond %d: %w", p.MinBond, ErrParamOutOfBounds)
	}
	if p.BondBps < 0 || p.BondBps > MaxBondBps {
		return fmt.Errorf("bond %d bps: %w", p.BondBps, ErrParamOutOfBounds)
	}
	if p.ResolutionFee < 0 || p.ResolutionFee > MaxResolutionFee {
		return fmt.Errorf("resolution fee %d: %w", p.ResolutionFee, ErrParamOutOfBounds)
	}
	if p.CreatorWindow < 0 || p.CreatorWindow >= EmergencyDelay {
		return fmt.Errorf("creator window %s: %w", p.CreatorWindow, ErrParamOutOfBounds)
	}
	return nil
}

// TotalFeeBps is the per-trade fee taken off the gross amount.
func (p Params) TotalFeeBps() int64 {
	return p.PlatformFeeBps + p.CreatorFeeBps
}

// RequiredBond returns the minimum proposer/disputer bond for a market with
// the given pool balance: a percentage of the pool, floor-clamped to the
// configured minimum.
func (p Params) RequiredBond(poolBalance int64) int64 {
	b := poolBalance / BpsDenominator * p.BondBps
	if r := poolBalance % BpsDenominator * p.BondBps / BpsDenominator; r > 0 {
		b += r
	}
	if b < p.MinBond {
		return p.MinBond
	}
	return b
}
