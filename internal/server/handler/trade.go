package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/engine"
)

// TradeService defines the methods that the trade handler requires from the
// service layer.
type TradeService interface {
	Buy(ctx context.Context, account common.Address, marketID string, side domain.Side, amount, minSharesOut int64) (engine.TradeResult, error)
	Sell(ctx context.Context, account common.Address, marketID string, side domain.Side, shares, minPaymentOut int64) (engine.TradeResult, error)
	PreviewBuy(ctx context.Context, marketID string, side domain.Side, amount int64) (engine.TradeResult, error)
	PreviewSell(ctx context.Context, marketID string, side domain.Side, shares int64) (engine.TradeResult, error)
}

// TradeHandler serves buy, sell, and quote endpoints.
type TradeHandler struct {
	trades TradeService
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler with the given service and logger.
func NewTradeHandler(trades TradeService, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{
		trades: trades,
		logger: logger,
	}
}

// buyRequest is the body of POST /api/markets/{id}/buy.
type buyRequest struct {
	Account      string `json:"account"`
	Side         string `json:"side"`
	Amount       int64  `json:"amount"`
	MinSharesOut int64  `json:"min_shares_out"`
}

// Buy spends a payment on shares of one side.
// POST /api/markets/{id}/buy
func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	var req buyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, ok := parseAddress(req.Account)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account address")
		return
	}

	res, err := h.trades.Buy(r.Context(), account, id, domain.Side(req.Side), req.Amount, req.MinSharesOut)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTradeResponse(res))
}

// sellRequest is the body of POST /api/markets/{id}/sell.
type sellRequest struct {
	Account       string `json:"account"`
	Side          string `json:"side"`
	Shares        int64  `json:"shares"`
	MinPaymentOut int64  `json:"min_payment_out"`
}

// Sell converts shares of one side back into a payment.
// POST /api/markets/{id}/sell
func (h *TradeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")

	var req sellRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, ok := parseAddress(req.Account)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid account address")
		return
	}

	res, err := h.trades.Sell(r.Context(), account, id, domain.Side(req.Side), req.Shares, req.MinPaymentOut)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTradeResponse(res))
}

// Quote prices a hypothetical trade without executing it.
// GET /api/markets/{id}/quote?action=buy&side=yes&amount=5000000
// GET /api/markets/{id}/quote?action=sell&side=no&shares=3000000
func (h *TradeHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	q := r.URL.Query()
	side := domain.Side(q.Get("side"))

	var (
		res engine.TradeResult
		err error
	)
	switch q.Get("action") {
	case "buy":
		amount, perr := strconv.ParseInt(q.Get("amount"), 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "amount must be an integer")
			return
		}
		res, err = h.trades.PreviewBuy(r.Context(), id, side, amount)
	case "sell":
		shares, perr := strconv.ParseInt(q.Get("shares"), 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "shares must be an integer")
			return
		}
		res, err = h.trades.PreviewSell(r.Context(), id, side, shares)
	default:
		writeError(w, http.StatusBadRequest, "action must be buy or sell")
		return
	}
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTradeResponse(res))
}
