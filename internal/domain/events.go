package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventType names a structured domain event. Every mutating engine
// operation emits exactly one, intended for an external indexer to replay;
// the engine itself answers only point queries.
type EventType string

const (
	EventMarketCreated   EventType = "market_created"
	EventMarketPaused    EventType = "market_paused"
	EventMarketUnpaused  EventType = "market_unpaused"
	EventTradeExecuted   EventType = "trade_executed"
	EventOutcomeProposed EventType = "outcome_proposed"
	EventOutcomeDisputed EventType = "outcome_disputed"
	EventVoteCast        EventType = "vote_cast"
	EventMarketResolved  EventType = "market_resolved"
	EventClaimed         EventType = "claimed"
	EventRefunded        EventType = "refunded"
	EventBalanceCredited EventType = "balance_credited"
	EventWithdrawal      EventType = "withdrawal"
	EventParamsProposed  EventType = "params_proposed"
	EventParamsChanged   EventType = "params_changed"
)

// Event is a structured domain event.
type Event struct {
	ID       string         `json:"id"`
	Type     EventType      `json:"type"`
	MarketID string         `json:"market_id,omitempty"`
	Account  common.Address `json:"account,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
	At       time.Time      `json:"at"`
}

// EventSink receives events emitted by the engine. Implementations must not
// call back into the engine and must not block; delivery is fire-and-forget
// from the engine's point of view.
type EventSink interface {
	Emit(ev Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ev Event)

// Emit calls f(ev).
func (f EventSinkFunc) Emit(ev Event) { f(ev) }
