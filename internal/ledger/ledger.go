// Package ledger holds the engine's mutable state: markets, positions,
// pending withdrawals, and governance actions. It is a plain in-process
// store passed to the engine by reference; the engine serializes access and
// treats it as the sole source of truth. Durability is layered on top by
// the PostgreSQL mirror, which reloads the ledger on startup.
package ledger

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

type positionKey struct {
	marketID string
	account  common.Address
}

// Store is the in-memory state of the whole venue. It is not safe for
// concurrent use; the engine holds its own lock around every operation.
type Store struct {
	markets     map[string]*domain.Market
	positions   map[positionKey]*domain.Position
	withdrawals map[common.Address]*domain.PendingWithdrawal
	actions     map[string]*domain.GovernanceAction
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		markets:     make(map[string]*domain.Market),
		positions:   make(map[positionKey]*domain.Position),
		withdrawals: make(map[common.Address]*domain.PendingWithdrawal),
		actions:     make(map[string]*domain.GovernanceAction),
	}
}

// PutMarket inserts or replaces a market.
func (s *Store) PutMarket(m *domain.Market) {
	s.markets[m.ID] = m
}

// Market returns the market with the given ID.
func (s *Store) Market(id string) (*domain.Market, error) {
	m, ok := s.markets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// Markets returns all markets ordered by creation time, newest first.
func (s *Store) Markets() []*domain.Market {
	out := make([]*domain.Market, 0, len(s.markets))
	for _, m := range s.markets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Position returns the position for (marketID, account), or nil if the
// account has never traded or voted in the market.
func (s *Store) Position(marketID string, account common.Address) *domain.Position {
	return s.positions[positionKey{marketID, account}]
}

// EnsurePosition returns the position for (marketID, account), creating an
// empty one if none exists yet. Positions are created lazily on first
// trade or vote.
func (s *Store) EnsurePosition(m *domain.Market, account common.Address) *domain.Position {
	key := positionKey{m.ID, account}
	if p, ok := s.positions[key]; ok {
		return p
	}
	p := &domain.Position{
		MarketID:  m.ID,
		Account:   account,
		CreatedAt: m.UpdatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	s.positions[key] = p
	return p
}

// PutPosition inserts or replaces a position (used by warm restore).
func (s *Store) PutPosition(p *domain.Position) {
	s.positions[positionKey{p.MarketID, p.Account}] = p
}

// PositionsByMarket returns every position in a market.
func (s *Store) PositionsByMarket(marketID string) []*domain.Position {
	var out []*domain.Position
	for k, p := range s.positions {
		if k.marketID == marketID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Account.Hex() < out[j].Account.Hex()
	})
	return out
}

// Withdrawal returns the pending-withdrawal entry for the account, creating
// a zero entry if none exists.
func (s *Store) Withdrawal(account common.Address) *domain.PendingWithdrawal {
	if w, ok := s.withdrawals[account]; ok {
		return w
	}
	w := &domain.PendingWithdrawal{Account: account}
	s.withdrawals[account] = w
	return w
}

// PutWithdrawal inserts or replaces a pending-withdrawal entry.
func (s *Store) PutWithdrawal(w *domain.PendingWithdrawal) {
	s.withdrawals[w.Account] = w
}

// PutAction inserts or replaces a governance action.
func (s *Store) PutAction(a *domain.GovernanceAction) {
	s.actions[a.ID] = a
}

// Action returns the governance action with the given ID.
func (s *Store) Action(id string) (*domain.GovernanceAction, error) {
	a, ok := s.actions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

// Actions returns all governance actions, newest first.
func (s *Store) Actions() []*domain.GovernanceAction {
	out := make([]*domain.GovernanceAction, 0, len(s.actions))
	for _, a := range s.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
