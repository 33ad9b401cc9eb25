package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/engine"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/notify"
)

// ResolutionService drives the propose/dispute/vote/finalize state machine.
// Finalize settles bonds into pending balances, so every address touched by
// the bond economics is mirrored after the engine commits. Disputes and
// resolutions push operator notifications.
type ResolutionService struct {
	engine   *engine.Engine
	mirror   *Mirror
	notifier *notify.Notifier
	treasury common.Address
	logger   *slog.Logger
}

// NewResolutionService creates a ResolutionService.
func NewResolutionService(eng *engine.Engine, mirror *Mirror, notifier *notify.Notifier, treasury common.Address, logger *slog.Logger) *ResolutionService {
	return &ResolutionService{
		engine:   eng,
		mirror:   mirror,
		notifier: notifier,
		treasury: treasury,
		logger:   logger.With(slog.String("service", "resolution")),
	}
}

// Propose posts an outcome with a bond on an expired market.
func (s *ResolutionService) Propose(ctx context.Context, account common.Address, marketID string, outcome bool, payment int64) (domain.Market, error) {
	m, err := s.engine.ProposeOutcome(account, marketID, outcome, payment)
	if err != nil {
		return domain.Market{}, err
	}
	s.mirror.Market(ctx, m)
	s.mirror.Withdrawal(ctx, s.engine.PendingBalance(s.treasury))

	s.notify(ctx, notify.Alert{
		Event:    string(domain.EventOutcomeProposed),
		MarketID: marketID,
		Title:    "Outcome proposed",
		Body:     fmt.Sprintf("%s proposed outcome=%v", account.Hex(), outcome),
	})

	s.logger.Info("outcome proposed",
		slog.String("market_id", marketID),
		slog.String("proposer", account.Hex()),
		slog.Bool("outcome", outcome),
		slog.Int64("bond", m.ProposerBond),
	)
	return m, nil
}

// Dispute challenges the proposed outcome with a matching bond.
func (s *ResolutionService) Dispute(ctx context.Context, account common.Address, marketID string, payment int64) (domain.Market, error) {
	m, err := s.engine.Dispute(account, marketID, payment)
	if err != nil {
		return domain.Market{}, err
	}
	s.mirror.Market(ctx, m)
	s.mirror.Withdrawal(ctx, s.engine.PendingBalance(s.treasury))

	s.notify(ctx, notify.Alert{
		Event:    string(domain.EventOutcomeDisputed),
		MarketID: marketID,
		Title:    "Outcome disputed",
		Body:     fmt.Sprintf("proposal %v disputed by %s", m.ProposedOutcome, account.Hex()),
	})

	s.logger.Info("outcome disputed",
		slog.String("market_id", marketID),
		slog.String("disputer", account.Hex()),
		slog.Int64("bond", m.DisputerBond),
	)
	return m, nil
}

// Vote casts a shareholder vote during a dispute.
func (s *ResolutionService) Vote(ctx context.Context, account common.Address, marketID string, backDisputer bool) (domain.Market, error) {
	m, err := s.engine.Vote(account, marketID, backDisputer)
	if err != nil {
		return domain.Market{}, err
	}
	s.mirror.Market(ctx, m)
	if p, err := s.engine.Position(marketID, account); err == nil {
		s.mirror.Position(ctx, p)
	}
	return m, nil
}

// Finalize closes the resolution window and settles the bonds.
func (s *ResolutionService) Finalize(ctx context.Context, marketID string) (domain.Market, error) {
	m, err := s.engine.FinalizeMarket(marketID)
	if err != nil {
		return domain.Market{}, err
	}
	s.mirror.Market(ctx, m)
	s.mirror.Withdrawal(ctx, s.engine.PendingBalance(m.Proposer))
	if m.Disputer != (common.Address{}) {
		s.mirror.Withdrawal(ctx, s.engine.PendingBalance(m.Disputer))
	}
	s.mirror.Withdrawal(ctx, s.engine.PendingBalance(s.treasury))

	s.notify(ctx, notify.Alert{
		Event:    string(domain.EventMarketResolved),
		MarketID: marketID,
		Title:    "Market resolved",
		Body:     fmt.Sprintf("resolved with outcome=%v", *m.Outcome),
	})

	s.logger.Info("market resolved",
		slog.String("market_id", marketID),
		slog.Bool("outcome", *m.Outcome),
	)
	return m, nil
}

func (s *ResolutionService) notify(ctx context.Context, a notify.Alert) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, a); err != nil {
		s.logger.Warn("notification failed",
			slog.String("event", a.Event),
			slog.String("error", err.Error()),
		)
	}
}
