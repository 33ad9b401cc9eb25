package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/engine"
)

// SettlementService defines the methods that the settlement handler requires
// from the service layer.
type SettlementService interface {
	Claim(ctx context.Context, account common.Address, marketID string) (engine.ClaimResult, error)
	EmergencyRefund(ctx context.Context, account common.Address, marketID string) (int64, error)
	Withdraw(ctx context.Context, account common.Address) (int64, error)
	WithdrawCreatorFees(ctx context.Context, account common.Address) (int64, error)
	PendingBalance(ctx context.Context, account common.Address) domain.PendingWithdrawal
}

// SettlementHandler serves claim, refund, and withdrawal endpoints.
type SettlementHandler struct {
	settlement SettlementService
	logger     *slog.Logger
}

// NewSettlementHandler creates a SettlementHandler.
func NewSettlementHandler(settlement SettlementService, logger *slog.Logger) *SettlementHandler {
	return &SettlementHandler{
		settlement: settlement,
		logger:     logger,
	}
}

// accountRequest is the shared body for account-only endpoints.
type accountRequest struct {
	Account string `json:"account"`
}

// claimResponse reports a claim payout.
type claimResponse struct {
	Payout    int64 `json:"payout"`
	JuryShare int64 `json:"jury_share"`
	Fee       int64 `json:"fee"`
}

// Claim pays out a winning position on a resolved market.
// POST /api/markets/{id}/claim
func (h *SettlementHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	var req accountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, ok := parseAddress(req.Account)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account address")
		return
	}

	res, err := h.settlement.Claim(r.Context(), account, id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, claimResponse{
		Payout:    res.Payout,
		JuryShare: res.JuryShare,
		Fee:       res.Fee,
	})
}

// Refund returns a position's pool share on a market stuck past the
// emergency delay.
// POST /api/markets/{id}/refund
func (h *SettlementHandler) Refund(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	var req accountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, ok := parseAddress(req.Account)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account address")
		return
	}

	refund, err := h.settlement.EmergencyRefund(r.Context(), account, id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"refund": refund})
}

// GetBalance returns an account's pull-pattern balance.
// GET /api/balances/{account}
func (h *SettlementHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	account, ok := parseAddress(pathParam(r, "account"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account address")
		return
	}

	bal := h.settlement.PendingBalance(r.Context(), account)
	writeJSON(w, http.StatusOK, withdrawalResponse{
		Account:     bal.Account.Hex(),
		Balance:     bal.Balance,
		CreatorFees: bal.CreatorFees,
	})
}

// withdrawRequest is the body of POST /api/withdrawals.
type withdrawRequest struct {
	Account string `json:"account"`
	Kind    string `json:"kind"` // "balance" (default) or "creator_fees"
}

// Withdraw drains an account's pending balance or creator fees.
// POST /api/withdrawals
func (h *SettlementHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, ok := parseAddress(req.Account)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account address")
		return
	}

	var (
		amount int64
		err    error
	)
	switch req.Kind {
	case "", "balance":
		amount, err = h.settlement.Withdraw(r.Context(), account)
	case "creator_fees":
		amount, err = h.settlement.WithdrawCreatorFees(r.Context(), account)
	default:
		writeError(w, http.StatusBadRequest, "kind must be balance or creator_fees")
		return
	}
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"amount": amount})
}
