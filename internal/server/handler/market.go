package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/engine"
)

// MarketService defines the methods that the market handler requires from
// the service layer. It is declared locally so the handler package does not
// depend on the concrete service implementation.
type MarketService interface {
	Create(ctx context.Context, creator common.Address, in engine.CreateMarketInput) (domain.Market, error)
	Get(ctx context.Context, id string) (domain.Market, error)
	List(ctx context.Context, opts domain.ListOpts) []domain.Market
	Position(ctx context.Context, marketID string, account common.Address) (domain.Position, error)
	Positions(ctx context.Context, marketID string) ([]domain.Position, error)
	Prices(ctx context.Context, marketID string) (yes, no int64, err error)
	SetPaused(ctx context.Context, marketID string, paused bool) (domain.Market, error)
}

// MarketHandler serves market lifecycle and read endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logger,
	}
}

// createMarketRequest is the body of POST /api/markets.
type createMarketRequest struct {
	Creator     string `json:"creator"`
	Question    string `json:"question"`
	EvidenceRef string `json:"evidence_ref"`
	Rules       string `json:"rules"`
	ImageRef    string `json:"image_ref"`
	ExpiresAt   string `json:"expires_at"` // RFC 3339
	Heat        string `json:"heat"`
}

// CreateMarket opens a new binary market.
// POST /api/markets
func (h *MarketHandler) CreateMarket(w http.ResponseWriter, r *http.Request) {
	var req createMarketRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	creator, ok := parseAddress(req.Creator)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid creator address")
		return
	}
	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "expires_at must be RFC 3339")
		return
	}

	m, err := h.markets.Create(r.Context(), creator, engine.CreateMarketInput{
		Question:    req.Question,
		EvidenceRef: req.EvidenceRef,
		Rules:       req.Rules,
		ImageRef:    req.ImageRef,
		ExpiresAt:   expiresAt,
		Heat:        domain.HeatLevel(req.Heat),
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMarketResponse(m))
}

// listMarketsResponse wraps the list endpoint output with metadata.
type listMarketsResponse struct {
	Markets []marketResponse `json:"markets"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// ListMarkets returns markets with pagination, newest first.
// GET /api/markets?limit=50&offset=0
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)
	markets := h.markets.List(r.Context(), opts)

	writeJSON(w, http.StatusOK, listMarketsResponse{
		Markets: toMarketResponses(markets),
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})
}

// GetMarket returns a single market by its ID.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	m, err := h.markets.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMarketResponse(m))
}

// GetPrices returns the current spot prices of a market.
// GET /api/markets/{id}/prices
func (h *MarketHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	yes, no, err := h.markets.Prices(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{
		"yes": yes,
		"no":  no,
	})
}

// ListPositions returns every position held in a market.
// GET /api/markets/{id}/positions
func (h *MarketHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	positions, err := h.markets.Positions(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list positions failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list positions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"positions": toPositionResponses(positions),
	})
}

// GetPosition returns one account's position in a market.
// GET /api/markets/{id}/positions/{account}
func (h *MarketHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	account, ok := parseAddress(pathParam(r, "account"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account address")
		return
	}

	p, err := h.markets.Position(r.Context(), id, account)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPositionResponse(p))
}

// pauseRequest is the body of POST /api/admin/markets/{id}/pause.
type pauseRequest struct {
	Paused bool `json:"paused"`
}

// SetPaused pauses or unpauses trading on a market. Admin-only.
// POST /api/admin/markets/{id}/pause
func (h *MarketHandler) SetPaused(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	var req pauseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.markets.SetPaused(r.Context(), id, req.Paused)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMarketResponse(m))
}
