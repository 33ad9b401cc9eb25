package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/engine"
)

type stubMarketService struct {
	market   domain.Market
	err      error
	lastIn   engine.CreateMarketInput
	prices   [2]int64
	position domain.Position
}

func (s *stubMarketService) Create(_ context.Context, creator common.Address, in engine.CreateMarketInput) (domain.Market, error) {
	s.lastIn = in
	if s.err != nil {
		return domain.Market{}, s.err
	}
	m := s.market
	m.Creator = creator
	return m, nil
}

func (s *stubMarketService) Get(context.Context, string) (domain.Market, error) {
	return s.market, s.err
}

func (s *stubMarketService) List(context.Context, domain.ListOpts) []domain.Market {
	return []domain.Market{s.market}
}

func (s *stubMarketService) Position(context.Context, string, common.Address) (domain.Position, error) {
	return s.position, s.err
}

func (s *stubMarketService) Positions(context.Context, string) ([]domain.Position, error) {
	return []domain.Position{s.position}, s.err
}

func (s *stubMarketService) Prices(context.Context, string) (int64, int64, error) {
	return s.prices[0], s.prices[1], s.err
}

func (s *stubMarketService) SetPaused(context.Context, string, bool) (domain.Market, error) {
	return s.market, s.err
}

func testMarket() domain.Market {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.Market{
		ID:        "m-1",
		Creator:   common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Question:  "will it rain tomorrow?",
		ExpiresAt: now.Add(24 * time.Hour),
		Heat:      domain.HeatStandard,
		Status:    domain.MarketStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// newTestMux registers the handler on a mux so path parameters resolve the
// same way they do in the real server.
func newTestMux(pattern string, h http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	return mux
}

func TestCreateMarketHandler(t *testing.T) {
	svc := &stubMarketService{market: testMarket()}
	h := NewMarketHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := newTestMux("POST /api/markets", h.CreateMarket)

	body := `{
		"creator": "0x1111111111111111111111111111111111111111",
		"question": "will it rain tomorrow?",
		"expires_at": "2026-03-02T12:00:00Z",
		"heat": "standard"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/markets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "will it rain tomorrow?", svc.lastIn.Question)
	require.Equal(t, domain.HeatStandard, svc.lastIn.Heat)

	var resp marketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "m-1", resp.ID)
	require.Equal(t, "active", resp.Status)
}

func TestCreateMarketRejectsBadInput(t *testing.T) {
	svc := &stubMarketService{market: testMarket()}
	h := NewMarketHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := newTestMux("POST /api/markets", h.CreateMarket)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"creator":`},
		{"bad creator", `{"creator":"nope","question":"q","expires_at":"2026-03-02T12:00:00Z","heat":"standard"}`},
		{"bad expiry", `{"creator":"0x1111111111111111111111111111111111111111","question":"q","expires_at":"tomorrow","heat":"standard"}`},
		{"unknown field", `{"creator":"0x1111111111111111111111111111111111111111","shoe_size":44}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/markets", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetMarketNotFound(t *testing.T) {
	svc := &stubMarketService{err: domain.ErrNotFound}
	h := NewMarketHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := newTestMux("GET /api/markets/{id}", h.GetMarket)

	req := httptest.NewRequest(http.MethodGet, "/api/markets/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPrices(t *testing.T) {
	svc := &stubMarketService{prices: [2]int64{600_000, 400_000}}
	h := NewMarketHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := newTestMux("GET /api/markets/{id}/prices", h.GetPrices)

	req := httptest.NewRequest(http.MethodGet, "/api/markets/m-1/prices", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(600_000), resp["yes"])
	require.Equal(t, int64(400_000), resp["no"])
}

func TestStatusForMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrInvalidSide, http.StatusBadRequest},
		{domain.ErrParamOutOfBounds, http.StatusBadRequest},
		{domain.ErrNotSigner, http.StatusForbidden},
		{domain.ErrBadSignature, http.StatusForbidden},
		{domain.ErrMarketClosed, http.StatusConflict},
		{domain.ErrSlippage, http.StatusConflict},
		{domain.ErrAlreadyClaimed, http.StatusConflict},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

// Interface check: the stub must track the real service surface.
var _ MarketService = (*stubMarketService)(nil)
