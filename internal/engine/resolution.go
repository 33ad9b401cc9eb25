package engine

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// ProposeOutcome stakes a bond on the market's outcome after expiry. The
// payment must cover the required bond plus the flat resolution fee; the
// fee goes to the treasury and the remainder is escrowed as the bond. A
// one-sided market is rejected outright: with no losing side to fund
// payouts the only fair exit is the emergency refund.
func (e *Engine) ProposeOutcome(account common.Address, marketID string, outcome bool, payment int64) (domain.Market, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.store.Market(marketID)
	if err != nil {
		return domain.Market{}, err
	}
	switch m.Status {
	case domain.MarketStatusProposed:
		return domain.Market{}, domain.ErrAlreadyProposed
	case domain.MarketStatusDisputed:
		return domain.Market{}, domain.ErrAlreadyDisputed
	case domain.MarketStatusResolved:
		return domain.Market{}, domain.ErrAlreadyResolved
	}

	now := e.now()
	if !m.Expired(now) {
		return domain.Market{}, domain.ErrMarketNotExpired
	}
	if m.OneSided() {
		return domain.Market{}, domain.ErrOneSidedMarket
	}
	if account != m.Creator && now.Before(m.ExpiresAt.Add(e.params.CreatorWindow)) {
		return domain.Market{}, domain.ErrCreatorPriority
	}

	required := e.params.RequiredBond(m.PoolBalance)
	if payment < required+e.params.ResolutionFee {
		return domain.Market{}, domain.ErrInsufficientBond
	}
	bond := payment - e.params.ResolutionFee

	// Commit.
	m.Status = domain.MarketStatusProposed
	m.Proposer = account
	m.ProposedOutcome = outcome
	m.ProposerBond = bond
	m.ProposedAt = now
	m.UpdatedAt = now

	tw := e.store.Withdrawal(e.treasury)
	tw.Balance += e.params.ResolutionFee
	tw.UpdatedAt = now

	e.emit(domain.EventOutcomeProposed, m.ID, account, map[string]any{
		"outcome": outcome,
		"bond":    bond,
	})
	return *m, nil
}

// Dispute stakes an opposing bond against the open proposal, flipping the
// market into a share-weighted vote. The bond is sized by the same rule as
// the proposer's.
func (e *Engine) Dispute(account common.Address, marketID string, payment int64) (domain.Market, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.store.Market(marketID)
	if err != nil {
		return domain.Market{}, err
	}
	switch m.Status {
	case domain.MarketStatusActive:
		return domain.Market{}, domain.ErrNotProposed
	case domain.MarketStatusDisputed:
		return domain.Market{}, domain.ErrAlreadyDisputed
	case domain.MarketStatusResolved:
		return domain.Market{}, domain.ErrAlreadyResolved
	}

	now := e.now()
	if !now.Before(m.ProposedAt.Add(domain.DisputeWindow)) {
		return domain.Market{}, domain.ErrWindowClosed
	}

	required := e.params.RequiredBond(m.PoolBalance)
	if payment < required+e.params.ResolutionFee {
		return domain.Market{}, domain.ErrInsufficientBond
	}
	bond := payment - e.params.ResolutionFee

	// Commit.
	m.Status = domain.MarketStatusDisputed
	m.Disputer = account
	m.DisputerBond = bond
	m.DisputedAt = now
	m.UpdatedAt = now

	tw := e.store.Withdrawal(e.treasury)
	tw.Balance += e.params.ResolutionFee
	tw.UpdatedAt = now

	e.emit(domain.EventOutcomeDisputed, m.ID, account, map[string]any{
		"bond": bond,
	})
	return *m, nil
}

// Vote casts one weighted vote in a disputed market: for the proposer's
// claim or the disputer's. Weight is the voter's total shares held on both
// sides, fixed at vote time.
func (e *Engine) Vote(account common.Address, marketID string, backDisputer bool) (domain.Market, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.store.Market(marketID)
	if err != nil {
		return domain.Market{}, err
	}
	if m.Status != domain.MarketStatusDisputed {
		return domain.Market{}, domain.ErrNotDisputed
	}

	now := e.now()
	if !now.Before(m.DisputedAt.Add(domain.VotingWindow)) {
		return domain.Market{}, domain.ErrWindowClosed
	}

	pos := e.store.Position(marketID, account)
	if pos == nil || pos.TotalShares() == 0 {
		return domain.Market{}, domain.ErrNoVotingPower
	}
	if pos.HasVoted {
		return domain.Market{}, domain.ErrAlreadyVoted
	}

	weight := pos.TotalShares()

	// Commit.
	pos.HasVoted = true
	pos.VotedForDispute = backDisputer
	pos.VoteWeight = weight
	pos.UpdatedAt = now
	if backDisputer {
		m.DisputerVoteWeight += weight
	} else {
		m.ProposerVoteWeight += weight
	}
	m.VoterCount++
	m.UpdatedAt = now

	e.emit(domain.EventVoteCast, m.ID, account, map[string]any{
		"for_disputer": backDisputer,
		"weight":       weight,
	})
	return *m, nil
}

// FinalizeMarket settles the resolution process once the relevant window
// has elapsed. An unopposed proposal resolves to the proposed outcome; a
// disputed one resolves to whichever side carries strictly more vote
// weight, with ties leaving the proposer's claim standing. Bond and reward
// credits go to pull-pattern balances. If the winning side's supply has
// drained to zero in the meantime, finalization refuses and the market
// stays refundable instead of resolving to an empty side.
func (e *Engine) FinalizeMarket(marketID string) (domain.Market, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.store.Market(marketID)
	if err != nil {
		return domain.Market{}, err
	}

	now := e.now()
	var disputerWins bool
	switch m.Status {
	case domain.MarketStatusProposed:
		if now.Before(m.ProposedAt.Add(domain.DisputeWindow)) {
			return domain.Market{}, domain.ErrWindowOpen
		}
	case domain.MarketStatusDisputed:
		if now.Before(m.DisputedAt.Add(domain.VotingWindow)) {
			return domain.Market{}, domain.ErrWindowOpen
		}
		disputerWins = m.DisputerVoteWeight > m.ProposerVoteWeight
	case domain.MarketStatusResolved:
		return domain.Market{}, domain.ErrAlreadyResolved
	default:
		return domain.Market{}, domain.ErrNotProposed
	}

	outcome := m.ProposedOutcome
	if disputerWins {
		outcome = !m.ProposedOutcome
	}
	winningSide := domain.SideNo
	if outcome {
		winningSide = domain.SideYes
	}
	winningSupply := m.SupplyOf(winningSide)
	if winningSupply == 0 {
		return domain.Market{}, domain.ErrWinningSideEmpty
	}

	// Commit: reward, bond returns, jury pool, snapshots.
	reward := int64(0)
	if !disputerWins {
		reward = bpsShare(m.PoolBalance, e.params.ProposerRewardBps)
		m.PoolBalance -= reward
	}

	if m.Status == domain.MarketStatusProposed {
		e.credit(m.Proposer, m.ProposerBond+reward, m.ID, now)
	} else if !disputerWins {
		winnerHalf := m.DisputerBond / 2
		e.credit(m.Proposer, m.ProposerBond+reward+winnerHalf, m.ID, now)
		e.fundJury(m, m.DisputerBond-winnerHalf, m.ProposerVoteWeight, false, now)
	} else {
		winnerHalf := m.ProposerBond / 2
		e.credit(m.Disputer, m.DisputerBond+winnerHalf, m.ID, now)
		e.fundJury(m, m.ProposerBond-winnerHalf, m.DisputerVoteWeight, true, now)
	}

	m.Status = domain.MarketStatusResolved
	m.Outcome = &outcome
	m.ResolvedAt = &now
	m.ResolvedPool = m.PoolBalance
	m.WinningSupply = winningSupply
	m.UpdatedAt = now

	e.emit(domain.EventMarketResolved, m.ID, common.Address{}, map[string]any{
		"outcome":        outcome,
		"disputed":       m.Disputer != (common.Address{}),
		"disputer_won":   disputerWins,
		"resolved_pool":  m.ResolvedPool,
		"winning_supply": m.WinningSupply,
		"jury_pool":      m.JuryPool,
	})
	return *m, nil
}

// credit adds to an account's pull-pattern balance and emits the credit.
func (e *Engine) credit(account common.Address, amount int64, marketID string, now time.Time) {
	if amount <= 0 {
		return
	}
	w := e.store.Withdrawal(account)
	w.Balance += amount
	w.UpdatedAt = now

	e.emit(domain.EventBalanceCredited, marketID, account, map[string]any{
		"amount": amount,
	})
}

// fundJury escrows half the losing bond for the voters who backed the
// winning side. With no winning voters the share falls to the treasury.
func (e *Engine) fundJury(m *domain.Market, pool, weight int64, forDisputer bool, now time.Time) {
	if pool <= 0 {
		return
	}
	if weight == 0 {
		tw := e.store.Withdrawal(e.treasury)
		tw.Balance += pool
		tw.UpdatedAt = now
		return
	}
	m.JuryPool = pool
	m.JuryWeight = weight
	m.JuryForSide = forDisputer
}
