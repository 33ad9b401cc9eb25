// Package engine is the pricing-and-settlement core. Every operation runs
// to completion under one lock as an indivisible unit: all guards are
// checked before the first mutation, so a failed operation leaves no
// partial state. Waiting is always a clock comparison against a stored
// deadline, never a scheduled callback.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/ledger"
)

// Config carries the engine's fixed identity: the platform treasury
// account, the governance committee, and the starting parameter set.
type Config struct {
	Treasury common.Address
	Signers  []common.Address
	Params   domain.Params
}

// Engine owns the ledger and serializes every externally-triggered
// operation. Correctness never depends on caller ordering beyond the
// explicit guards (pool solvency, supply-non-empty, window checks).
type Engine struct {
	mu       sync.Mutex
	store    *ledger.Store
	params   domain.Params
	treasury common.Address
	signers  []common.Address
	sink     domain.EventSink
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// New creates an Engine over the given ledger. A zero Params falls back to
// the defaults. sink may be nil to discard events.
func New(store *ledger.Store, cfg Config, sink domain.EventSink, logger *slog.Logger) *Engine {
	params := cfg.Params
	if params == (domain.Params{}) {
		params = domain.DefaultParams()
	}
	return &Engine{
		store:    store,
		params:   params,
		treasury: cfg.Treasury,
		signers:  cfg.Signers,
		sink:     sink,
		logger:   logger.With(slog.String("component", "engine")),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetClock replaces the engine's time source. Intended for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// emit forwards a structured domain event to the sink, stamping an ID and
// timestamp. The sink must not call back into the engine.
func (e *Engine) emit(t domain.EventType, marketID string, account common.Address, payload map[string]any) {
	if e.sink == nil {
		return
	}
	e.sink.Emit(domain.Event{
		ID:       e.newID(),
		Type:     t,
		MarketID: marketID,
		Account:  account,
		Payload:  payload,
		At:       e.now(),
	})
}

// isSigner reports whether the address belongs to the governance committee.
func (e *Engine) isSigner(addr common.Address) bool {
	for _, s := range e.signers {
		if s == addr {
			return true
		}
	}
	return false
}

// bpsShare returns amount * bps / 10000, floored. Safe for any int64
// amount because the product is computed in two steps.
func bpsShare(amount, bps int64) int64 {
	return amount/domain.BpsDenominator*bps + amount%domain.BpsDenominator*bps/domain.BpsDenominator
}

// ---------------------------------------------------------------------------
// Point queries. Each returns a copy so callers can never mutate the ledger
// behind the engine's back.
// ---------------------------------------------------------------------------

// Market returns a snapshot of the market.
func (e *Engine) Market(id string) (domain.Market, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, err := e.store.Market(id)
	if err != nil {
		return domain.Market{}, err
	}
	return *m, nil
}

// Markets returns snapshots of all markets, newest first.
func (e *Engine) Markets(opts domain.ListOpts) []domain.Market {
	e.mu.Lock()
	defer e.mu.Unlock()
	all := e.store.Markets()
	if opts.Offset > 0 {
		if opts.Offset >= len(all) {
			return nil
		}
		all = all[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	out := make([]domain.Market, len(all))
	for i, m := range all {
		out[i] = *m
	}
	return out
}

// Position returns a snapshot of one account's position in a market.
func (e *Engine) Position(marketID string, account common.Address) (domain.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.store.Market(marketID); err != nil {
		return domain.Position{}, err
	}
	p := e.store.Position(marketID, account)
	if p == nil {
		return domain.Position{}, domain.ErrNotFound
	}
	return *p, nil
}

// PendingBalance returns the account's pull-pattern balances.
func (e *Engine) PendingBalance(account common.Address) domain.PendingWithdrawal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.store.Withdrawal(account)
}

// Params returns the current economic parameters.
func (e *Engine) Params() domain.Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// SetParams replaces the parameter set wholesale, subject to the hard caps.
// Used when restoring governed parameters from the mirror at startup.
func (e *Engine) SetParams(p domain.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = p
	return nil
}

// Restore loads previously mirrored state into the ledger. It must be
// called before the engine starts serving operations.
func (e *Engine) Restore(markets []domain.Market, positions []domain.Position, withdrawals []domain.PendingWithdrawal, actions []domain.GovernanceAction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range markets {
		m := markets[i]
		e.store.PutMarket(&m)
	}
	for i := range positions {
		p := positions[i]
		e.store.PutPosition(&p)
	}
	for i := range withdrawals {
		w := withdrawals[i]
		e.store.PutWithdrawal(&w)
	}
	for i := range actions {
		a := actions[i]
		e.store.PutAction(&a)
	}
}
