// Package service wires the pricing engine to its side effects: the
// PostgreSQL mirror, the Redis signal bus, the price cache, notifications,
// and the audit log. Services never hold domain invariants themselves; the
// engine commits first and the services fan the result out. A failed side
// effect is logged, never propagated back to the caller, because the
// operation has already happened.
package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// Channel and stream names used on the signal bus.
const (
	ChannelEvents      = "ch:events"
	ChannelMarketQuery = "ch:market:*"
	StreamEvents       = "stream:events"
)

// ChannelMarket returns the per-market pub/sub channel name.
func ChannelMarket(marketID string) string {
	return "ch:market:" + marketID
}

// EventDispatcher receives engine events and fans them out to the journal
// and the signal bus. Emit never blocks the engine: events queue into a
// buffered channel and overflow is dropped with a warning.
type EventDispatcher struct {
	events domain.EventStore
	bus    domain.SignalBus
	logger *slog.Logger
	queue  chan domain.Event
}

// NewEventDispatcher creates a dispatcher with the given queue depth.
func NewEventDispatcher(events domain.EventStore, bus domain.SignalBus, depth int, logger *slog.Logger) *EventDispatcher {
	if depth <= 0 {
		depth = 1024
	}
	return &EventDispatcher{
		events: events,
		bus:    bus,
		logger: logger.With(slog.String("component", "dispatcher")),
		queue:  make(chan domain.Event, depth),
	}
}

// Emit implements domain.EventSink.
func (d *EventDispatcher) Emit(ev domain.Event) {
	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("event queue full, dropping event",
			slog.String("event_id", ev.ID),
			slog.String("type", string(ev.Type)),
		)
	}
}

// Run consumes the queue until the context is cancelled. It drains whatever
// is already queued before returning.
func (d *EventDispatcher) Run(ctx context.Context) error {
	for {
		select {
		case ev := <-d.queue:
			d.handle(ctx, ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-d.queue:
					d.handle(context.WithoutCancel(ctx), ev)
				default:
					return ctx.Err()
				}
			}
		}
	}
}

// handle journals one event and publishes it to live subscribers.
func (d *EventDispatcher) handle(ctx context.Context, ev domain.Event) {
	if err := d.events.Insert(ctx, ev); err != nil {
		d.logger.Error("event journal insert failed",
			slog.String("event_id", ev.ID),
			slog.String("error", err.Error()),
		)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		d.logger.Error("event marshal failed",
			slog.String("event_id", ev.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := d.bus.Publish(ctx, ChannelEvents, payload); err != nil {
		d.logger.Warn("event publish failed",
			slog.String("event_id", ev.ID),
			slog.String("error", err.Error()),
		)
	}
	if ev.MarketID != "" {
		if err := d.bus.Publish(ctx, ChannelMarket(ev.MarketID), payload); err != nil {
			d.logger.Warn("market event publish failed",
				slog.String("event_id", ev.ID),
				slog.String("market_id", ev.MarketID),
				slog.String("error", err.Error()),
			)
		}
	}
	if err := d.bus.StreamAppend(ctx, StreamEvents, payload); err != nil {
		d.logger.Warn("event stream append failed",
			slog.String("event_id", ev.ID),
			slog.String("error", err.Error()),
		)
	}
}

// Compile-time interface check.
var _ domain.EventSink = (*EventDispatcher)(nil)
