package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// ResolutionService defines the methods that the resolution handler requires
// from the service layer.
type ResolutionService interface {
	Propose(ctx context.Context, account common.Address, marketID string, outcome bool, payment int64) (domain.Market, error)
	Dispute(ctx context.Context, account common.Address, marketID string, payment int64) (domain.Market, error)
	Vote(ctx context.Context, account common.Address, marketID string, backDisputer bool) (domain.Market, error)
	Finalize(ctx context.Context, marketID string) (domain.Market, error)
}

// ResolutionHandler serves the propose/dispute/vote/finalize endpoints.
type ResolutionHandler struct {
	resolution ResolutionService
	logger     *slog.Logger
}

// NewResolutionHandler creates a ResolutionHandler.
func NewResolutionHandler(resolution ResolutionService, logger *slog.Logger) *ResolutionHandler {
	return &ResolutionHandler{
		resolution: resolution,
		logger:     logger,
	}
}

// proposeRequest is the body of POST /api/markets/{id}/propose.
type proposeRequest struct {
	Account string `json:"account"`
	Outcome bool   `json:"outcome"`
	Payment int64  `json:"payment"` // bond plus resolution fee
}

// Propose posts an outcome with a bond on an expired market.
// POST /api/markets/{id}/propose
func (h *ResolutionHandler) Propose(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	var req proposeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, ok := parseAddress(req.Account)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account address")
		return
	}

	m, err := h.resolution.Propose(r.Context(), account, id, req.Outcome, req.Payment)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMarketResponse(m))
}

// disputeRequest is the body of POST /api/markets/{id}/dispute.
type disputeRequest struct {
	Account string `json:"account"`
	Payment int64  `json:"payment"`
}

// Dispute challenges the proposed outcome with a matching bond.
// POST /api/markets/{id}/dispute
func (h *ResolutionHandler) Dispute(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	var req disputeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, ok := parseAddress(req.Account)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account address")
		return
	}

	m, err := h.resolution.Dispute(r.Context(), account, id, req.Payment)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMarketResponse(m))
}

// voteRequest is the body of POST /api/markets/{id}/vote.
type voteRequest struct {
	Account      string `json:"account"`
	BackDisputer bool   `json:"back_disputer"`
}

// Vote casts a shareholder vote during a dispute.
// POST /api/markets/{id}/vote
func (h *ResolutionHandler) Vote(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	var req voteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, ok := parseAddress(req.Account)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account address")
		return
	}

	m, err := h.resolution.Vote(r.Context(), account, id, req.BackDisputer)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMarketResponse(m))
}

// Finalize closes the resolution window and settles the bonds. Anyone may
// call it once the window has elapsed.
// POST /api/markets/{id}/finalize
func (h *ResolutionHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	m, err := h.resolution.Finalize(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMarketResponse(m))
}
