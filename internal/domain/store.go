package domain

import (
	"context"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// The store interfaces below describe the PostgreSQL mirror. The in-memory
// ledger is the source of truth during an operation; services write the
// resulting state behind it for durability and warm restarts.

// MarketStore persists market state.
type MarketStore interface {
	Upsert(ctx context.Context, m Market) error
	GetByID(ctx context.Context, id string) (Market, error)
	List(ctx context.Context, opts ListOpts) ([]Market, error)
	ListAll(ctx context.Context) ([]Market, error)
}

// PositionStore persists per-(market, account) positions.
type PositionStore interface {
	Upsert(ctx context.Context, p Position) error
	Get(ctx context.Context, marketID string, account common.Address) (Position, error)
	ListByMarket(ctx context.Context, marketID string) ([]Position, error)
	ListAll(ctx context.Context) ([]Position, error)
}

// WithdrawalStore persists pull-pattern pending balances.
type WithdrawalStore interface {
	Upsert(ctx context.Context, w PendingWithdrawal) error
	Get(ctx context.Context, account common.Address) (PendingWithdrawal, error)
	ListAll(ctx context.Context) ([]PendingWithdrawal, error)
}

// GovernanceStore persists parameter-change actions and applied params.
type GovernanceStore interface {
	UpsertAction(ctx context.Context, a GovernanceAction) error
	GetAction(ctx context.Context, id string) (GovernanceAction, error)
	ListActions(ctx context.Context, opts ListOpts) ([]GovernanceAction, error)
	SaveParams(ctx context.Context, p Params) error
	LoadParams(ctx context.Context) (Params, error)
}

// EventStore is the append-only domain event journal.
type EventStore interface {
	Insert(ctx context.Context, ev Event) error
	ListBefore(ctx context.Context, before time.Time) ([]Event, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}

// StreamMessage is a single entry read from a durable stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// SignalBus publishes domain events for external consumers: ephemeral
// pub/sub for live subscribers plus a durable trimmed stream for replay.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}

// RateLimiter limits request rates per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// PriceCache caches per-market spot prices for read traffic.
type PriceCache interface {
	SetPrices(ctx context.Context, marketID string, yes, no int64, ts time.Time) error
	GetPrices(ctx context.Context, marketID string) (yes, no int64, ts time.Time, err error)
}

// BlobWriter uploads objects to cold storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// Archiver moves aged event-journal rows into cold storage.
type Archiver interface {
	ArchiveEvents(ctx context.Context, before time.Time) (int64, error)
}
