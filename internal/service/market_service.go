package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/engine"
)

// MarketService exposes market lifecycle and read operations. Reads go to
// the engine directly; the spot-price path checks the Redis cache first and
// backfills it on a miss.
type MarketService struct {
	engine    *engine.Engine
	mirror    *Mirror
	prices    domain.PriceCache
	positions domain.PositionStore
	audit     domain.AuditStore
	logger    *slog.Logger
}

// NewMarketService creates a MarketService.
func NewMarketService(
	eng *engine.Engine,
	mirror *Mirror,
	prices domain.PriceCache,
	positions domain.PositionStore,
	audit domain.AuditStore,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		engine:    eng,
		mirror:    mirror,
		prices:    prices,
		positions: positions,
		audit:     audit,
		logger:    logger.With(slog.String("service", "market")),
	}
}

// Create opens a new market and mirrors it.
func (s *MarketService) Create(ctx context.Context, creator common.Address, in engine.CreateMarketInput) (domain.Market, error) {
	m, err := s.engine.CreateMarket(creator, in)
	if err != nil {
		return domain.Market{}, err
	}
	s.mirror.Market(ctx, m)

	if err := s.audit.Log(ctx, "market.create", map[string]any{
		"market_id": m.ID,
		"creator":   creator.Hex(),
		"heat":      string(m.Heat),
	}); err != nil {
		s.logger.Warn("audit log failed", slog.String("error", err.Error()))
	}

	s.logger.Info("market created",
		slog.String("market_id", m.ID),
		slog.String("creator", creator.Hex()),
	)
	return m, nil
}

// Get returns one market.
func (s *MarketService) Get(ctx context.Context, id string) (domain.Market, error) {
	return s.engine.Market(id)
}

// List returns markets, newest first.
func (s *MarketService) List(ctx context.Context, opts domain.ListOpts) []domain.Market {
	return s.engine.Markets(opts)
}

// Position returns one account's holdings in one market.
func (s *MarketService) Position(ctx context.Context, marketID string, account common.Address) (domain.Position, error) {
	return s.engine.Position(marketID, account)
}

// Positions lists every position in a market from the mirror.
func (s *MarketService) Positions(ctx context.Context, marketID string) ([]domain.Position, error) {
	return s.positions.ListByMarket(ctx, marketID)
}

// Prices returns the current spot prices for a market, serving from the
// cache when it is warm and backfilling it otherwise.
func (s *MarketService) Prices(ctx context.Context, marketID string) (yes, no int64, err error) {
	yes, no, _, err = s.prices.GetPrices(ctx, marketID)
	if err == nil {
		return yes, no, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("price cache read failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}

	yes, no, err = s.engine.SpotPrices(marketID)
	if err != nil {
		return 0, 0, err
	}
	if cerr := s.prices.SetPrices(ctx, marketID, yes, no, time.Now()); cerr != nil {
		s.logger.Warn("price cache backfill failed",
			slog.String("market_id", marketID),
			slog.String("error", cerr.Error()),
		)
	}
	return yes, no, nil
}

// SetPaused pauses or unpauses trading on a market.
func (s *MarketService) SetPaused(ctx context.Context, marketID string, paused bool) (domain.Market, error) {
	m, err := s.engine.SetPaused(marketID, paused)
	if err != nil {
		return domain.Market{}, err
	}
	s.mirror.Market(ctx, m)

	if err := s.audit.Log(ctx, "market.set_paused", map[string]any{
		"market_id": marketID,
		"paused":    paused,
	}); err != nil {
		s.logger.Warn("audit log failed", slog.String("error", err.Error()))
	}
	return m, nil
}
