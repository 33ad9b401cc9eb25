// Package server exposes the engine over HTTP and WebSocket.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/server/handler"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/server/middleware"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port           int
	CORSOrigins    []string
	APIKey         string // guards admin routes; if empty, they are open
	RateLimitPerIP int
	RateWindow     time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health     *handler.HealthHandler
	Markets    *handler.MarketHandler
	Trades     *handler.TradeHandler
	Resolution *handler.ResolutionHandler
	Settlement *handler.SettlementHandler
	Governance *handler.GovernanceHandler
	Audit      *handler.AuditHandler
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// Public routes carry CORS, logging, and per-IP rate limiting; the admin
// subtree additionally requires the API key.
func NewServer(cfg Config, handlers Handlers, limiter domain.RateLimiter, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	admin := middleware.Auth(cfg.APIKey)

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Market lifecycle and reads.
	mux.HandleFunc("POST /api/markets", handlers.Markets.CreateMarket)
	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /api/markets/{id}", handlers.Markets.GetMarket)
	mux.HandleFunc("GET /api/markets/{id}/prices", handlers.Markets.GetPrices)
	mux.HandleFunc("GET /api/markets/{id}/positions", handlers.Markets.ListPositions)
	mux.HandleFunc("GET /api/markets/{id}/positions/{account}", handlers.Markets.GetPosition)

	// Trading.
	mux.HandleFunc("POST /api/markets/{id}/buy", handlers.Trades.Buy)
	mux.HandleFunc("POST /api/markets/{id}/sell", handlers.Trades.Sell)
	mux.HandleFunc("GET /api/markets/{id}/quote", handlers.Trades.Quote)

	// Resolution state machine.
	mux.HandleFunc("POST /api/markets/{id}/propose", handlers.Resolution.Propose)
	mux.HandleFunc("POST /api/markets/{id}/dispute", handlers.Resolution.Dispute)
	mux.HandleFunc("POST /api/markets/{id}/vote", handlers.Resolution.Vote)
	mux.HandleFunc("POST /api/markets/{id}/finalize", handlers.Resolution.Finalize)

	// Settlement.
	mux.HandleFunc("POST /api/markets/{id}/claim", handlers.Settlement.Claim)
	mux.HandleFunc("POST /api/markets/{id}/refund", handlers.Settlement.Refund)
	mux.HandleFunc("GET /api/balances/{account}", handlers.Settlement.GetBalance)
	mux.HandleFunc("POST /api/withdrawals", handlers.Settlement.Withdraw)

	// Governance. Mutations carry their own signature checks; the reads are
	// public.
	mux.HandleFunc("POST /api/governance/actions", handlers.Governance.ProposeAction)
	mux.HandleFunc("POST /api/governance/actions/{id}/confirm", handlers.Governance.ConfirmAction)
	mux.HandleFunc("GET /api/governance/actions", handlers.Governance.ListActions)
	mux.HandleFunc("GET /api/governance/actions/{id}", handlers.Governance.GetAction)
	mux.HandleFunc("GET /api/governance/params", handlers.Governance.GetParams)

	// Admin subtree, behind the API key.
	mux.Handle("POST /api/admin/markets/{id}/pause", admin(http.HandlerFunc(handlers.Markets.SetPaused)))
	mux.Handle("GET /api/admin/audit", admin(http.HandlerFunc(handlers.Audit.ListEntries)))

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first.
	var h http.Handler = mux
	if limiter != nil && cfg.RateLimitPerIP > 0 {
		h = middleware.RateLimit(limiter, cfg.RateLimitPerIP, cfg.RateWindow)(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
