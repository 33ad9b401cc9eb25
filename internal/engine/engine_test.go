package engine

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/ledger"
)

var (
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000fe")
	creator  = common.HexToAddress("0x0000000000000000000000000000000000000001")
	alice    = common.HexToAddress("0x000000000000000000000000000000000000000a")
	bob      = common.HexToAddress("0x000000000000000000000000000000000000000b")
	carol    = common.HexToAddress("0x000000000000000000000000000000000000000c")
)

// clock is a manually-advanced time source.
type clock struct {
	t time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *clock) Set(t time.Time)         { c.t = t }

// fixture wires an engine over a fresh ledger with a fixed clock,
// sequential IDs, and an event recorder.
type fixture struct {
	e      *Engine
	store  *ledger.Store
	clk    *clock
	events []domain.Event
}

func newFixture(t *testing.T, signers ...common.Address) *fixture {
	t.Helper()
	f := &fixture{
		store: ledger.New(),
		clk:   newClock(),
	}
	sink := domain.EventSinkFunc(func(ev domain.Event) {
		f.events = append(f.events, ev)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.e = New(f.store, Config{Treasury: treasury, Signers: signers}, sink, logger)
	f.e.now = f.clk.Now
	seq := 0
	f.e.newID = func() string {
		seq++
		return fmt.Sprintf("id-%04d", seq)
	}
	return f
}

// openMarket creates a standard-heat market expiring in 24 hours.
func (f *fixture) openMarket(t *testing.T) string {
	t.Helper()
	m, err := f.e.CreateMarket(creator, CreateMarketInput{
		Question:  "Will it rain in Sofia tomorrow?",
		ExpiresAt: f.clk.Now().Add(24 * time.Hour),
		Heat:      domain.HeatStandard,
	})
	if err != nil {
		t.Fatalf("CreateMarket: %v", err)
	}
	return m.ID
}

// eventsOfType returns the recorded events matching t, oldest first.
func (f *fixture) eventsOfType(t domain.EventType) []domain.Event {
	var out []domain.Event
	for _, ev := range f.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func units(n int64) int64 { return n * domain.MicroUnit }
