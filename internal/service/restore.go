package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/engine"
)

// Restorer rebuilds the in-memory ledger from the PostgreSQL mirror on
// startup. A first boot finds an empty mirror and leaves the engine on its
// configured seed parameters; after that the mirrored params win.
type Restorer struct {
	markets     domain.MarketStore
	positions   domain.PositionStore
	withdrawals domain.WithdrawalStore
	governance  domain.GovernanceStore
	logger      *slog.Logger
}

// NewRestorer creates a Restorer over the mirror stores.
func NewRestorer(
	markets domain.MarketStore,
	positions domain.PositionStore,
	withdrawals domain.WithdrawalStore,
	governance domain.GovernanceStore,
	logger *slog.Logger,
) *Restorer {
	return &Restorer{
		markets:     markets,
		positions:   positions,
		withdrawals: withdrawals,
		governance:  governance,
		logger:      logger.With(slog.String("component", "restore")),
	}
}

// Load reads the full mirror and installs it into the engine.
func (r *Restorer) Load(ctx context.Context, eng *engine.Engine) error {
	params, err := r.governance.LoadParams(ctx)
	switch {
	case err == nil:
		if err := eng.SetParams(params); err != nil {
			return fmt.Errorf("service: restore params: %w", err)
		}
	case errors.Is(err, domain.ErrNotFound):
		// First boot: keep the configured seed parameters.
	default:
		return fmt.Errorf("service: load params: %w", err)
	}

	markets, err := r.markets.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("service: load markets: %w", err)
	}
	positions, err := r.positions.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("service: load positions: %w", err)
	}
	withdrawals, err := r.withdrawals.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("service: load withdrawals: %w", err)
	}
	actions, err := r.governance.ListActions(ctx, domain.ListOpts{})
	if err != nil {
		return fmt.Errorf("service: load governance actions: %w", err)
	}

	eng.Restore(markets, positions, withdrawals, actions)

	r.logger.Info("ledger restored",
		slog.Int("markets", len(markets)),
		slog.Int("positions", len(positions)),
		slog.Int("withdrawals", len(withdrawals)),
		slog.Int("governance_actions", len(actions)),
	)
	return nil
}
