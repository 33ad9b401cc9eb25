package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/engine"
)

// TradeService executes buys and sells. After the engine commits a trade
// the service mirrors the touched rows and refreshes the price cache; fee
// credits mean the treasury and creator pending balances change on every
// trade, so both are mirrored too.
type TradeService struct {
	engine   *engine.Engine
	mirror   *Mirror
	prices   domain.PriceCache
	treasury common.Address
	logger   *slog.Logger
}

// NewTradeService creates a TradeService.
func NewTradeService(eng *engine.Engine, mirror *Mirror, prices domain.PriceCache, treasury common.Address, logger *slog.Logger) *TradeService {
	return &TradeService{
		engine:   eng,
		mirror:   mirror,
		prices:   prices,
		treasury: treasury,
		logger:   logger.With(slog.String("service", "trade")),
	}
}

// Buy spends a payment on shares of one side.
func (s *TradeService) Buy(ctx context.Context, account common.Address, marketID string, side domain.Side, amount, minSharesOut int64) (engine.TradeResult, error) {
	res, err := s.engine.Buy(account, marketID, side, amount, minSharesOut)
	if err != nil {
		return engine.TradeResult{}, err
	}
	s.afterTrade(ctx, account, marketID, res)

	s.logger.Info("buy executed",
		slog.String("market_id", marketID),
		slog.String("account", account.Hex()),
		slog.String("side", string(side)),
		slog.Int64("amount", amount),
		slog.Int64("shares", res.Shares),
	)
	return res, nil
}

// Sell converts shares of one side back into a payment.
func (s *TradeService) Sell(ctx context.Context, account common.Address, marketID string, side domain.Side, shares, minPaymentOut int64) (engine.TradeResult, error) {
	res, err := s.engine.Sell(account, marketID, side, shares, minPaymentOut)
	if err != nil {
		return engine.TradeResult{}, err
	}
	s.afterTrade(ctx, account, marketID, res)

	s.logger.Info("sell executed",
		slog.String("market_id", marketID),
		slog.String("account", account.Hex()),
		slog.String("side", string(side)),
		slog.Int64("shares", shares),
		slog.Int64("payment", res.Payment),
	)
	return res, nil
}

// afterTrade mirrors the post-trade state and refreshes the price cache.
func (s *TradeService) afterTrade(ctx context.Context, account common.Address, marketID string, res engine.TradeResult) {
	m, err := s.engine.Market(marketID)
	if err == nil {
		s.mirror.Market(ctx, m)
		s.mirror.Withdrawal(ctx, s.engine.PendingBalance(m.Creator))
	}
	if p, err := s.engine.Position(marketID, account); err == nil {
		s.mirror.Position(ctx, p)
	}
	s.mirror.Withdrawal(ctx, s.engine.PendingBalance(s.treasury))

	if err := s.prices.SetPrices(ctx, marketID, res.YesPrice, res.NoPrice, time.Now()); err != nil {
		s.logger.Warn("price cache update failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}
}

// PreviewBuy quotes a buy without executing it.
func (s *TradeService) PreviewBuy(ctx context.Context, marketID string, side domain.Side, amount int64) (engine.TradeResult, error) {
	return s.engine.PreviewBuy(marketID, side, amount)
}

// PreviewSell quotes a sell without executing it.
func (s *TradeService) PreviewSell(ctx context.Context, marketID string, side domain.Side, shares int64) (engine.TradeResult, error) {
	return s.engine.PreviewSell(marketID, side, shares)
}
