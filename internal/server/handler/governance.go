package handler

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// GovernanceService defines the methods that the governance handler requires
// from the service layer.
type GovernanceService interface {
	Propose(ctx context.Context, signer common.Address, t domain.ActionType, value int64, sig []byte) (domain.GovernanceAction, error)
	Confirm(ctx context.Context, signer common.Address, actionID string, sig []byte) (domain.GovernanceAction, error)
	Action(ctx context.Context, id string) (domain.GovernanceAction, error)
	Actions(ctx context.Context, opts domain.ListOpts) []domain.GovernanceAction
	Params(ctx context.Context) domain.Params
}

// GovernanceHandler serves the signed parameter-change endpoints.
type GovernanceHandler struct {
	governance GovernanceService
	logger     *slog.Logger
}

// NewGovernanceHandler creates a GovernanceHandler.
func NewGovernanceHandler(governance GovernanceService, logger *slog.Logger) *GovernanceHandler {
	return &GovernanceHandler{
		governance: governance,
		logger:     logger,
	}
}

// parseSignature decodes a 65-byte hex secp256k1 signature, with or without
// a 0x prefix.
func parseSignature(s string) ([]byte, bool) {
	sig, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil || len(sig) != 65 {
		return nil, false
	}
	return sig, true
}

// proposeActionRequest is the body of POST /api/governance/actions.
type proposeActionRequest struct {
	Signer    string `json:"signer"`
	Type      string `json:"type"`
	Value     int64  `json:"value"`
	Signature string `json:"signature"` // hex over the proposal digest
}

// ProposeAction submits a signed parameter change.
// POST /api/governance/actions
func (h *GovernanceHandler) ProposeAction(w http.ResponseWriter, r *http.Request) {
	var req proposeActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	signer, ok := parseAddress(req.Signer)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid signer address")
		return
	}
	sig, ok := parseSignature(req.Signature)
	if !ok {
		writeError(w, http.StatusBadRequest, "signature must be 65 bytes of hex")
		return
	}

	a, err := h.governance.Propose(r.Context(), signer, domain.ActionType(req.Type), req.Value, sig)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActionResponse(a))
}

// confirmActionRequest is the body of POST /api/governance/actions/{id}/confirm.
type confirmActionRequest struct {
	Signer    string `json:"signer"`
	Signature string `json:"signature"` // hex over the confirmation digest
}

// ConfirmAction adds a signer's confirmation to a pending action.
// POST /api/governance/actions/{id}/confirm
func (h *GovernanceHandler) ConfirmAction(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	var req confirmActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	signer, ok := parseAddress(req.Signer)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid signer address")
		return
	}
	sig, ok := parseSignature(req.Signature)
	if !ok {
		writeError(w, http.StatusBadRequest, "signature must be 65 bytes of hex")
		return
	}

	a, err := h.governance.Confirm(r.Context(), signer, id, sig)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionResponse(a))
}

// GetAction returns one governance action.
// GET /api/governance/actions/{id}
func (h *GovernanceHandler) GetAction(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	a, err := h.governance.Action(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionResponse(a))
}

// ListActions returns governance actions, newest first.
// GET /api/governance/actions
func (h *GovernanceHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)
	actions := h.governance.Actions(r.Context(), opts)

	out := make([]actionResponse, len(actions))
	for i, a := range actions {
		out[i] = toActionResponse(a)
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": out})
}

// GetParams returns the currently applied parameter set.
// GET /api/governance/params
func (h *GovernanceHandler) GetParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toParamsResponse(h.governance.Params(r.Context())))
}
