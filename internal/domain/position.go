package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Position is one account's holdings in one market, with cost-basis
// tracking and the terminal flags that make claim/refund/vote one-shot.
type Position struct {
	MarketID string
	Account  common.Address

	YesShares int64
	NoShares  int64
	Invested  int64 // cumulative gross payments in
	Returned  int64 // cumulative net payments out

	Claimed  bool
	Refunded bool

	HasVoted        bool
	VotedForDispute bool
	VoteWeight      int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalShares is the voting weight of the position: all shares held on
// either side, not just the side the holder traded most.
func (p *Position) TotalShares() int64 {
	return p.YesShares + p.NoShares
}

// SharesOf returns the shares held on the given side.
func (p *Position) SharesOf(side Side) int64 {
	if side == SideYes {
		return p.YesShares
	}
	return p.NoShares
}
