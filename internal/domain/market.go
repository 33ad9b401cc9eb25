package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Side identifies one of the two outcomes of a binary market.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Valid reports whether the side is one of the two recognised outcomes.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// HeatLevel selects the virtual-liquidity constant of a market's pricing
// curve. Hotter markets use a smaller constant: steeper curve, more price
// movement per trade.
type HeatLevel string

const (
	HeatVolatile HeatLevel = "volatile"
	HeatStandard HeatLevel = "standard"
	HeatDeep     HeatLevel = "deep"
)

// VirtualLiquidity returns the per-side supply offset in micro-shares.
func (h HeatLevel) VirtualLiquidity() int64 {
	switch h {
	case HeatVolatile:
		return 500 * MicroUnit
	case HeatStandard:
		return 5_000 * MicroUnit
	case HeatDeep:
		return 50_000 * MicroUnit
	default:
		return 0
	}
}

// Valid reports whether the heat level is recognised.
func (h HeatLevel) Valid() bool {
	return h.VirtualLiquidity() > 0
}

// MarketStatus is the resolution state of a market. A market is in exactly
// one status at any time.
type MarketStatus string

const (
	MarketStatusActive   MarketStatus = "active"
	MarketStatusProposed MarketStatus = "proposed"
	MarketStatusDisputed MarketStatus = "disputed"
	MarketStatusResolved MarketStatus = "resolved"
)

// Market is a binary prediction market: immutable metadata, the live share
// supplies and pool, and the resolution fields the state machine drives.
// All monetary amounts are int64 micro-units, all supplies micro-shares.
type Market struct {
	ID          string
	Creator     common.Address
	Question    string
	EvidenceRef string
	Rules       string
	ImageRef    string
	ExpiresAt   time.Time
	Heat        HeatLevel

	YesShares   int64
	NoShares    int64
	PoolBalance int64
	Paused      bool

	Status          MarketStatus
	Outcome         *bool // set only when Resolved; true = YES
	Proposer        common.Address
	ProposedOutcome bool
	ProposerBond    int64
	ProposedAt      time.Time
	Disputer        common.Address
	DisputerBond    int64
	DisputedAt      time.Time

	ProposerVoteWeight int64
	DisputerVoteWeight int64
	VoterCount         int64

	// Settlement snapshots, fixed at finalize time so claim payouts are
	// independent of claim ordering.
	ResolvedAt    *time.Time
	ResolvedPool  int64
	WinningSupply int64
	JuryPool      int64
	JuryWeight    int64
	JuryForSide   bool // true when the jury backed the disputer

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalShares returns the combined supply of both sides.
func (m *Market) TotalShares() int64 {
	return m.YesShares + m.NoShares
}

// Expired reports whether trading has closed.
func (m *Market) Expired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}

// OneSided reports whether either side has zero supply. Such a market has
// no losing side to fund payouts and can only be exited via emergency
// refund.
func (m *Market) OneSided() bool {
	return m.YesShares == 0 || m.NoShares == 0
}

// SupplyOf returns the current supply of the given side.
func (m *Market) SupplyOf(side Side) int64 {
	if side == SideYes {
		return m.YesShares
	}
	return m.NoShares
}
