package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps an engine error to an HTTP status and sends it. The
// error text is the response body; domain errors carry no internals.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("handler: unexpected error", slog.String("error", err.Error()))
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// statusFor buckets the domain error taxonomy into HTTP status codes:
// validation errors are 400, missing entities 404, authorization failures
// 403, and state or economic preconditions 409.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrEmptyQuestion),
		errors.Is(err, domain.ErrPastExpiry),
		errors.Is(err, domain.ErrInvalidHeat),
		errors.Is(err, domain.ErrInvalidSide),
		errors.Is(err, domain.ErrBelowMinTrade),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrParamOutOfBounds):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrNotSigner),
		errors.Is(err, domain.ErrBadSignature):
		return http.StatusForbidden

	case errors.Is(err, domain.ErrMarketClosed),
		errors.Is(err, domain.ErrMarketPaused),
		errors.Is(err, domain.ErrMarketNotExpired),
		errors.Is(err, domain.ErrAlreadyProposed),
		errors.Is(err, domain.ErrNotProposed),
		errors.Is(err, domain.ErrAlreadyDisputed),
		errors.Is(err, domain.ErrNotDisputed),
		errors.Is(err, domain.ErrAlreadyResolved),
		errors.Is(err, domain.ErrNotResolved),
		errors.Is(err, domain.ErrOneSidedMarket),
		errors.Is(err, domain.ErrWindowClosed),
		errors.Is(err, domain.ErrWindowOpen),
		errors.Is(err, domain.ErrCreatorPriority),
		errors.Is(err, domain.ErrEmergencyNotOpen),
		errors.Is(err, domain.ErrWinningSideEmpty),
		errors.Is(err, domain.ErrSlippage),
		errors.Is(err, domain.ErrPoolInsufficient),
		errors.Is(err, domain.ErrInsufficientBond),
		errors.Is(err, domain.ErrInsufficientShare),
		errors.Is(err, domain.ErrNoVotingPower),
		errors.Is(err, domain.ErrAlreadyClaimed),
		errors.Is(err, domain.ErrAlreadyRefunded),
		errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrAlreadyConfirmed),
		errors.Is(err, domain.ErrActionExecuted),
		errors.Is(err, domain.ErrActionExpired),
		errors.Is(err, domain.ErrNothingToClaim),
		errors.Is(err, domain.ErrNothingOwed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parseListOpts extracts standard pagination parameters from the query string.
// Defaults: limit=50 (max 500), offset=0.
func parseListOpts(r *http.Request) domain.ListOpts {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return domain.ListOpts{
		Limit:  limit,
		Offset: offset,
	}
}

// pathParam extracts a named path parameter from the request using Go 1.22+
// built-in routing (http.Request.PathValue).
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// parseAddress validates and parses a hex account address.
func parseAddress(s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}
