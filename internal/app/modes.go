package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/crypto"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/engine"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/ledger"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/server"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/server/handler"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/server/ws"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/service"
)

// dispatcherQueueDepth bounds how many engine events can wait for fan-out.
const dispatcherQueueDepth = 4096

// buildEngine constructs the ledger, event dispatcher, and engine, then
// restores state from the mirror.
func (a *App) buildEngine(ctx context.Context, deps *Dependencies) (*engine.Engine, *service.EventDispatcher, error) {
	dispatcher := service.NewEventDispatcher(deps.EventStore, deps.SignalBus, dispatcherQueueDepth, a.logger)

	eng := engine.New(ledger.New(), engine.Config{
		Treasury: a.cfg.TreasuryAddress(),
		Signers:  a.cfg.SignerAddresses(),
		Params: domain.Params{
			PlatformFeeBps:    a.cfg.Engine.PlatformFeeBps,
			CreatorFeeBps:     a.cfg.Engine.CreatorFeeBps,
			ProposerRewardBps: a.cfg.Engine.ProposerRewardBps,
			MinBond:           a.cfg.Engine.MinBond,
			BondBps:           a.cfg.Engine.BondBps,
			ResolutionFee:     a.cfg.Engine.ResolutionFee,
			CreatorWindow:     a.cfg.Engine.CreatorWindow.Duration,
		},
	}, dispatcher, a.logger)

	restorer := service.NewRestorer(
		deps.MarketStore, deps.PositionStore, deps.WithdrawalStore,
		deps.GovernanceStore, a.logger,
	)
	if err := restorer.Load(ctx, eng); err != nil {
		return nil, nil, fmt.Errorf("app: restore ledger: %w", err)
	}

	return eng, dispatcher, nil
}

// ServeMode runs the full stack: engine, event dispatcher, HTTP + WebSocket
// server, and (when enabled) the periodic event archiver.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	eng, dispatcher, err := a.buildEngine(ctx, deps)
	if err != nil {
		return err
	}

	treasury := a.cfg.TreasuryAddress()
	mirror := service.NewMirror(
		deps.MarketStore, deps.PositionStore, deps.WithdrawalStore,
		deps.GovernanceStore, a.logger,
	)

	marketSvc := service.NewMarketService(eng, mirror, deps.PriceCache, deps.PositionStore, deps.AuditStore, a.logger)
	tradeSvc := service.NewTradeService(eng, mirror, deps.PriceCache, treasury, a.logger)
	resolutionSvc := service.NewResolutionService(eng, mirror, deps.Notifier, treasury, a.logger)
	settlementSvc := service.NewSettlementService(eng, mirror, deps.AuditStore, treasury, a.logger)
	governanceSvc := service.NewGovernanceService(eng, mirror, deps.AuditStore, a.logger)

	// Admin auth is disabled when no operator credential is configured.
	var apiKey string
	if a.cfg.Operator.ApiKey != "" || a.cfg.Operator.EncryptedKeyPath != "" {
		apiKey, err = crypto.LoadSecret(crypto.SecretConfig{
			Raw:           a.cfg.Operator.ApiKey,
			EncryptedPath: a.cfg.Operator.EncryptedKeyPath,
			Password:      a.cfg.Operator.KeyPassword,
		})
		if err != nil {
			return fmt.Errorf("app: load operator key: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(ctx)
	})

	wsHub := ws.NewHub(deps.SignalBus, a.logger)
	g.Go(func() error {
		return wsHub.Run(ctx)
	})

	if a.cfg.Server.Enabled {
		srv := server.NewServer(server.Config{
			Port:           a.cfg.Server.Port,
			CORSOrigins:    a.cfg.Server.CORSOrigins,
			APIKey:         apiKey,
			RateLimitPerIP: a.cfg.Server.RateLimitPerIP,
			RateWindow:     a.cfg.Server.RateWindow.Duration,
		}, server.Handlers{
			Health:     handler.NewHealthHandler(a.logger),
			Markets:    handler.NewMarketHandler(marketSvc, a.logger),
			Trades:     handler.NewTradeHandler(tradeSvc, a.logger),
			Resolution: handler.NewResolutionHandler(resolutionSvc, a.logger),
			Settlement: handler.NewSettlementHandler(settlementSvc, a.logger),
			Governance: handler.NewGovernanceHandler(governanceSvc, a.logger),
			Audit:      handler.NewAuditHandler(deps.AuditStore, a.logger),
		}, deps.RateLimiter, wsHub, a.logger)

		g.Go(func() error {
			return srv.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if a.cfg.Archive.Enabled && deps.Archiver != nil {
		g.Go(func() error {
			return a.archiveLoop(ctx, deps.Archiver)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	return err
}

// archiveLoop periodically moves aged event-journal rows to cold storage.
func (a *App) archiveLoop(ctx context.Context, archiver domain.Archiver) error {
	interval := a.cfg.Archive.Interval.Duration
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.archiveOnce(ctx, archiver); err != nil {
				a.logger.ErrorContext(ctx, "event archival failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// archiveOnce archives everything older than the retention window.
func (a *App) archiveOnce(ctx context.Context, archiver domain.Archiver) error {
	retention := time.Duration(a.cfg.Archive.RetentionDays) * 24 * time.Hour
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	before := time.Now().UTC().Add(-retention)

	n, err := archiver.ArchiveEvents(ctx, before)
	if err != nil {
		return err
	}
	if n > 0 {
		a.logger.InfoContext(ctx, "events archived",
			slog.Int64("count", n),
			slog.Time("before", before),
		)
	}
	return nil
}

// ArchiveMode runs one archival pass and exits.
func (a *App) ArchiveMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting archive mode")

	if deps.Archiver == nil {
		return fmt.Errorf("app: archive mode requires s3 configuration")
	}
	return a.archiveOnce(ctx, deps.Archiver)
}

// MigrateMode applies pending database migrations and exits. Wire already
// applies them when run_migrations is set; this mode forces a run.
func (a *App) MigrateMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting migrate mode")

	if err := deps.PGClient.RunMigrations(ctx); err != nil {
		return fmt.Errorf("app: migrate: %w", err)
	}
	a.logger.InfoContext(ctx, "migrations applied")
	return nil
}
