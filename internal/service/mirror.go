package service

import (
	"context"
	"log/slog"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// Mirror writes engine state behind the in-memory ledger into PostgreSQL.
// The ledger has already committed by the time a mirror write runs, so a
// failure here means durability lag, not a failed operation; it is logged
// at error level and swallowed. A warm restart reloads whatever the mirror
// last saw.
type Mirror struct {
	markets     domain.MarketStore
	positions   domain.PositionStore
	withdrawals domain.WithdrawalStore
	governance  domain.GovernanceStore
	logger      *slog.Logger
}

// NewMirror creates a Mirror over the given stores.
func NewMirror(
	markets domain.MarketStore,
	positions domain.PositionStore,
	withdrawals domain.WithdrawalStore,
	governance domain.GovernanceStore,
	logger *slog.Logger,
) *Mirror {
	return &Mirror{
		markets:     markets,
		positions:   positions,
		withdrawals: withdrawals,
		governance:  governance,
		logger:      logger.With(slog.String("component", "mirror")),
	}
}

// Market persists one market snapshot.
func (m *Mirror) Market(ctx context.Context, mk domain.Market) {
	if err := m.markets.Upsert(ctx, mk); err != nil {
		m.logger.Error("market mirror failed",
			slog.String("market_id", mk.ID),
			slog.String("error", err.Error()),
		)
	}
}

// Position persists one position snapshot.
func (m *Mirror) Position(ctx context.Context, p domain.Position) {
	if err := m.positions.Upsert(ctx, p); err != nil {
		m.logger.Error("position mirror failed",
			slog.String("market_id", p.MarketID),
			slog.String("account", p.Account.Hex()),
			slog.String("error", err.Error()),
		)
	}
}

// Withdrawal persists one pending-balance snapshot.
func (m *Mirror) Withdrawal(ctx context.Context, w domain.PendingWithdrawal) {
	if err := m.withdrawals.Upsert(ctx, w); err != nil {
		m.logger.Error("withdrawal mirror failed",
			slog.String("account", w.Account.Hex()),
			slog.String("error", err.Error()),
		)
	}
}

// Action persists one governance action snapshot.
func (m *Mirror) Action(ctx context.Context, a domain.GovernanceAction) {
	if err := m.governance.UpsertAction(ctx, a); err != nil {
		m.logger.Error("governance action mirror failed",
			slog.String("action_id", a.ID),
			slog.String("error", err.Error()),
		)
	}
}

// Params persists the applied parameter set.
func (m *Mirror) Params(ctx context.Context, p domain.Params) {
	if err := m.governance.SaveParams(ctx, p); err != nil {
		m.logger.Error("params mirror failed",
			slog.String("error", err.Error()),
		)
	}
}
