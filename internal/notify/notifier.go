// Package notify pushes venue alerts (outcome proposals, disputes,
// resolutions, errors) to operator channels. Every configured sender
// receives every alert that passes the event filter; a dead channel never
// blocks the others.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Alert is one operator notification. Event carries the domain event name
// the filter matches on; MarketID is empty for venue-wide alerts.
type Alert struct {
	Event    string
	MarketID string
	Title    string
	Body     string
}

// Sender delivers an Alert over one channel (telegram, discord). Each
// sender renders the alert in its own markup.
type Sender interface {
	Send(ctx context.Context, a Alert) error
	Name() string
}

// Notifier fans alerts out to its senders, dropping events the operator
// did not ask for.
type Notifier struct {
	senders []Sender
	allowed map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. Only
// alerts whose Event appears in events pass the filter; an empty events
// list lets everything through.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		allowed: allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Send delivers the alert to every sender if its event passes the filter.
// Sender failures are collected so one broken webhook cannot starve the
// remaining channels; the combined error names each failed sender.
func (n *Notifier) Send(ctx context.Context, a Alert) error {
	if len(n.allowed) > 0 && !n.allowed[a.Event] {
		n.logger.DebugContext(ctx, "alert filtered out",
			slog.String("event", a.Event),
		)
		return nil
	}
	if len(n.senders) == 0 {
		return nil
	}

	var failed []string
	for _, s := range n.senders {
		if err := s.Send(ctx, a); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("event", a.Event),
				slog.String("error", err.Error()),
			)
			failed = append(failed, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "alert sent",
			slog.String("sender", s.Name()),
			slog.String("event", a.Event),
		)
	}
	if len(failed) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(failed), strings.Join(failed, "; "))
	}
	return nil
}
