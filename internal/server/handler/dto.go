package handler

import (
	"sort"
	"time"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/engine"
)

// The wire representations below keep the HTTP surface stable regardless of
// how the domain structs evolve. Times are RFC 3339, addresses checksummed
// hex, and every amount an int64 count of micro-units.

type marketResponse struct {
	ID          string `json:"id"`
	Creator     string `json:"creator"`
	Question    string `json:"question"`
	EvidenceRef string `json:"evidence_ref,omitempty"`
	Rules       string `json:"rules,omitempty"`
	ImageRef    string `json:"image_ref,omitempty"`
	ExpiresAt   string `json:"expires_at"`
	Heat        string `json:"heat"`

	YesShares   int64 `json:"yes_shares"`
	NoShares    int64 `json:"no_shares"`
	PoolBalance int64 `json:"pool_balance"`
	Paused      bool  `json:"paused"`

	Status          string `json:"status"`
	Outcome         *bool  `json:"outcome,omitempty"`
	Proposer        string `json:"proposer,omitempty"`
	ProposedOutcome *bool  `json:"proposed_outcome,omitempty"`
	ProposerBond    int64  `json:"proposer_bond,omitempty"`
	ProposedAt      string `json:"proposed_at,omitempty"`
	Disputer        string `json:"disputer,omitempty"`
	DisputerBond    int64  `json:"disputer_bond,omitempty"`
	DisputedAt      string `json:"disputed_at,omitempty"`

	ProposerVoteWeight int64 `json:"proposer_vote_weight,omitempty"`
	DisputerVoteWeight int64 `json:"disputer_vote_weight,omitempty"`
	VoterCount         int64 `json:"voter_count,omitempty"`

	ResolvedAt string `json:"resolved_at,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toMarketResponse(m domain.Market) marketResponse {
	resp := marketResponse{
		ID:          m.ID,
		Creator:     m.Creator.Hex(),
		Question:    m.Question,
		EvidenceRef: m.EvidenceRef,
		Rules:       m.Rules,
		ImageRef:    m.ImageRef,
		ExpiresAt:   m.ExpiresAt.Format(time.RFC3339),
		Heat:        string(m.Heat),
		YesShares:   m.YesShares,
		NoShares:    m.NoShares,
		PoolBalance: m.PoolBalance,
		Paused:      m.Paused,
		Status:      string(m.Status),
		Outcome:     m.Outcome,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339),
	}

	if m.Status != domain.MarketStatusActive {
		proposed := m.ProposedOutcome
		resp.Proposer = m.Proposer.Hex()
		resp.ProposedOutcome = &proposed
		resp.ProposerBond = m.ProposerBond
		resp.ProposedAt = m.ProposedAt.Format(time.RFC3339)
	}
	if !m.DisputedAt.IsZero() {
		resp.Disputer = m.Disputer.Hex()
		resp.DisputerBond = m.DisputerBond
		resp.DisputedAt = m.DisputedAt.Format(time.RFC3339)
		resp.ProposerVoteWeight = m.ProposerVoteWeight
		resp.DisputerVoteWeight = m.DisputerVoteWeight
		resp.VoterCount = m.VoterCount
	}
	if m.ResolvedAt != nil {
		resp.ResolvedAt = m.ResolvedAt.Format(time.RFC3339)
	}
	return resp
}

func toMarketResponses(ms []domain.Market) []marketResponse {
	out := make([]marketResponse, len(ms))
	for i, m := range ms {
		out[i] = toMarketResponse(m)
	}
	return out
}

type positionResponse struct {
	MarketID  string `json:"market_id"`
	Account   string `json:"account"`
	YesShares int64  `json:"yes_shares"`
	NoShares  int64  `json:"no_shares"`
	Invested  int64  `json:"invested"`
	Returned  int64  `json:"returned"`
	Claimed   bool   `json:"claimed"`
	Refunded  bool   `json:"refunded"`
	HasVoted  bool   `json:"has_voted"`
	UpdatedAt string `json:"updated_at"`
}

func toPositionResponse(p domain.Position) positionResponse {
	return positionResponse{
		MarketID:  p.MarketID,
		Account:   p.Account.Hex(),
		YesShares: p.YesShares,
		NoShares:  p.NoShares,
		Invested:  p.Invested,
		Returned:  p.Returned,
		Claimed:   p.Claimed,
		Refunded:  p.Refunded,
		HasVoted:  p.HasVoted,
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

func toPositionResponses(ps []domain.Position) []positionResponse {
	out := make([]positionResponse, len(ps))
	for i, p := range ps {
		out[i] = toPositionResponse(p)
	}
	return out
}

type tradeResponse struct {
	Shares   int64 `json:"shares"`
	Payment  int64 `json:"payment"`
	Fee      int64 `json:"fee"`
	YesPrice int64 `json:"yes_price"`
	NoPrice  int64 `json:"no_price"`
}

func toTradeResponse(res engine.TradeResult) tradeResponse {
	return tradeResponse{
		Shares:   res.Shares,
		Payment:  res.Payment,
		Fee:      res.Fee,
		YesPrice: res.YesPrice,
		NoPrice:  res.NoPrice,
	}
}

type withdrawalResponse struct {
	Account     string `json:"account"`
	Balance     int64  `json:"balance"`
	CreatorFees int64  `json:"creator_fees"`
}

type actionResponse struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Value      int64    `json:"value"`
	ProposedBy string   `json:"proposed_by"`
	Confirmed  []string `json:"confirmed"`
	Executed   bool     `json:"executed"`
	ExpiresAt  string   `json:"expires_at"`
	CreatedAt  string   `json:"created_at"`
}

func toActionResponse(a domain.GovernanceAction) actionResponse {
	confirmed := make([]string, 0, len(a.Confirmed))
	for addr := range a.Confirmed {
		confirmed = append(confirmed, addr.Hex())
	}
	sort.Strings(confirmed)

	return actionResponse{
		ID:         a.ID,
		Type:       string(a.Type),
		Value:      a.Value,
		ProposedBy: a.ProposedBy.Hex(),
		Confirmed:  confirmed,
		Executed:   a.Executed,
		ExpiresAt:  a.ExpiresAt.Format(time.RFC3339),
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
}

type paramsResponse struct {
	PlatformFeeBps    int64 `json:"platform_fee_bps"`
	CreatorFeeBps     int64 `json:"creator_fee_bps"`
	ProposerRewardBps int64 `json:"proposer_reward_bps"`
	MinBond           int64 `json:"min_bond"`
	BondBps           int64 `json:"bond_bps"`
	ResolutionFee     int64 `json:"resolution_fee"`
	CreatorWindowSec  int64 `json:"creator_window_sec"`
}

func toParamsResponse(p domain.Params) paramsResponse {
	return paramsResponse{
		PlatformFeeBps:    p.PlatformFeeBps,
		CreatorFeeBps:     p.CreatorFeeBps,
		ProposerRewardBps: p.ProposerRewardBps,
		MinBond:           p.MinBond,
		BondBps:           p.BondBps,
		ResolutionFee:     p.ResolutionFee,
		CreatorWindowSec:  int64(p.CreatorWindow / time.Second),
	}
}
