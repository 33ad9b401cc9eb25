package service

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/engine"
)

// SettlementService handles the pull side of the money flow: claims,
// emergency refunds, and withdrawals from pending balances.
type SettlementService struct {
	engine   *engine.Engine
	mirror   *Mirror
	audit    domain.AuditStore
	treasury common.Address
	logger   *slog.Logger
}

// NewSettlementService creates a SettlementService.
func NewSettlementService(eng *engine.Engine, mirror *Mirror, audit domain.AuditStore, treasury common.Address, logger *slog.Logger) *SettlementService {
	return &SettlementService{
		engine:   eng,
		mirror:   mirror,
		audit:    audit,
		treasury: treasury,
		logger:   logger.With(slog.String("service", "settlement")),
	}
}

// Claim pays out a winning position on a resolved market.
func (s *SettlementService) Claim(ctx context.Context, account common.Address, marketID string) (engine.ClaimResult, error) {
	res, err := s.engine.Claim(account, marketID)
	if err != nil {
		return engine.ClaimResult{}, err
	}
	s.afterSettlement(ctx, account, marketID)

	s.logger.Info("claim paid",
		slog.String("market_id", marketID),
		slog.String("account", account.Hex()),
		slog.Int64("payout", res.Payout),
		slog.Int64("jury_share", res.JuryShare),
	)
	return res, nil
}

// EmergencyRefund returns a position's pool share on a market stuck past
// the emergency delay.
func (s *SettlementService) EmergencyRefund(ctx context.Context, account common.Address, marketID string) (int64, error) {
	refund, err := s.engine.EmergencyRefund(account, marketID)
	if err != nil {
		return 0, err
	}
	s.afterSettlement(ctx, account, marketID)

	s.logger.Info("emergency refund paid",
		slog.String("market_id", marketID),
		slog.String("account", account.Hex()),
		slog.Int64("refund", refund),
	)
	return refund, nil
}

// afterSettlement mirrors the rows a claim or refund touches.
func (s *SettlementService) afterSettlement(ctx context.Context, account common.Address, marketID string) {
	if m, err := s.engine.Market(marketID); err == nil {
		s.mirror.Market(ctx, m)
	}
	if p, err := s.engine.Position(marketID, account); err == nil {
		s.mirror.Position(ctx, p)
	}
	s.mirror.Withdrawal(ctx, s.engine.PendingBalance(account))
	s.mirror.Withdrawal(ctx, s.engine.PendingBalance(s.treasury))
}

// Withdraw drains an account's pending balance.
func (s *SettlementService) Withdraw(ctx context.Context, account common.Address) (int64, error) {
	amount, err := s.engine.WithdrawPending(account)
	if err != nil {
		return 0, err
	}
	s.mirror.Withdrawal(ctx, s.engine.PendingBalance(account))

	if err := s.audit.Log(ctx, "withdrawal.pending", map[string]any{
		"account": account.Hex(),
		"amount":  amount,
	}); err != nil {
		s.logger.Warn("audit log failed", slog.String("error", err.Error()))
	}

	s.logger.Info("pending balance withdrawn",
		slog.String("account", account.Hex()),
		slog.Int64("amount", amount),
	)
	return amount, nil
}

// WithdrawCreatorFees drains an account's accumulated creator fees.
func (s *SettlementService) WithdrawCreatorFees(ctx context.Context, account common.Address) (int64, error) {
	amount, err := s.engine.WithdrawCreatorFees(account)
	if err != nil {
		return 0, err
	}
	s.mirror.Withdrawal(ctx, s.engine.PendingBalance(account))

	if err := s.audit.Log(ctx, "withdrawal.creator_fees", map[string]any{
		"account": account.Hex(),
		"amount":  amount,
	}); err != nil {
		s.logger.Warn("audit log failed", slog.String("error", err.Error()))
	}

	s.logger.Info("creator fees withdrawn",
		slog.String("account", account.Hex()),
		slog.Int64("amount", amount),
	)
	return amount, nil
}

// PendingBalance returns an account's pull-pattern balance.
func (s *SettlementService) PendingBalance(ctx context.Context, account common.Address) domain.PendingWithdrawal {
	return s.engine.PendingBalance(account)
}
