package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// EventStore implements domain.EventStore using PostgreSQL. The events table
// is the append-only journal behind the live Redis stream; the archiver
// moves aged rows to cold storage.
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates a new EventStore backed by the given pool.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Insert appends one event to the journal. Duplicate IDs are ignored so a
// replayed dispatch cannot double-write.
func (s *EventStore) Insert(ctx context.Context, ev domain.Event) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("postgres: marshal event payload %s: %w", ev.ID, err)
	}

	const query = `
		INSERT INTO events (id, event_type, market_id, account, payload, at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	_, err = s.pool.Exec(ctx, query,
		ev.ID, string(ev.Type), ev.MarketID, ev.Account.Hex(), payload, ev.At)
	if err != nil {
		return fmt.Errorf("postgres: insert event %s: %w", ev.ID, err)
	}
	return nil
}

// ListBefore returns every event older than the cutoff, oldest first.
func (s *EventStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_type, market_id, account, payload, at
		FROM events WHERE at < $1 ORDER BY at`, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list events before %s: %w", before, err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			ev        domain.Event
			eventType string
			account   string
			payload   []byte
		)
		if err := rows.Scan(&ev.ID, &eventType, &ev.MarketID, &account, &payload, &ev.At); err != nil {
			return nil, fmt.Errorf("postgres: scan event: %w", err)
		}
		ev.Type = domain.EventType(eventType)
		ev.Account = common.HexToAddress(account)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &ev.Payload); err != nil {
				return nil, fmt.Errorf("postgres: unmarshal event payload %s: %w", ev.ID, err)
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list events rows: %w", err)
	}
	return events, nil
}

// DeleteBefore removes every event older than the cutoff and reports how
// many rows were deleted.
func (s *EventStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM events WHERE at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete events before %s: %w", before, err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.EventStore = (*EventStore)(nil)
