package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// eventStreamMaxLen caps the durable event stream (XADD MAXLEN ~). The
// stream is a replay buffer for indexers catching up, not an archive; the
// postgres journal and the S3 archiver keep the full history.
const eventStreamMaxLen int64 = 10_000

// SignalBus fans market events out over Redis: pub/sub for live listeners
// (the WebSocket hub, per-market watchers) and a capped stream for ordered
// replay. It implements domain.SignalBus.
type SignalBus struct {
	rdb *redis.Client
}

// NewSignalBus creates a SignalBus on the shared client.
func NewSignalBus(c *Client) *SignalBus {
	return &SignalBus{rdb: c.rdb}
}

// Publish sends a payload to a pub/sub channel. Delivery is best-effort;
// a listener that was not subscribed at publish time never sees it.
func (b *SignalBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe opens a subscription and returns a channel of raw payloads.
// Channel names containing glob metacharacters ("*?[") subscribe by
// pattern, which is how a listener follows every market at once
// ("ch:market:*"). Cancelling the context tears the subscription down and
// closes the returned channel.
func (b *SignalBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	var sub *redis.PubSub
	if strings.ContainsAny(channel, "*?[") {
		sub = b.rdb.PSubscribe(ctx, channel)
	} else {
		sub = b.rdb.Subscribe(ctx, channel)
	}
	// Wait for the server's subscribe confirmation so callers never miss
	// events published right after Subscribe returns.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", channel, err)
	}

	out := make(chan []byte, 128)
	go b.pump(ctx, sub, out)
	return out, nil
}

// pump forwards pub/sub messages until the context ends or the driver
// closes its channel.
func (b *SignalBus) pump(ctx context.Context, sub *redis.PubSub, out chan<- []byte) {
	defer close(out)
	defer sub.Close()

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}
}

// StreamAppend appends a payload to the named stream, trimming it to
// roughly eventStreamMaxLen entries.
func (b *SignalBus) StreamAppend(ctx context.Context, stream string, payload []byte) error {
	err := b.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: eventStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"payload": payload},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis: stream append %s: %w", stream, err)
	}
	return nil
}

// StreamRead returns up to count entries after lastID ("0" for the start of
// the buffer, "$" for new entries only). No pending entries is not an
// error; the caller gets an empty slice and its cursor stays put.
func (b *SignalBus) StreamRead(ctx context.Context, stream string, lastID string, count int) ([]domain.StreamMessage, error) {
	results, err := b.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: []string{stream, lastID},
		Count:   int64(count),
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: stream read %s: %w", stream, err)
	}

	var out []domain.StreamMessage
	for _, res := range results {
		for _, msg := range res.Messages {
			payload, ok := streamPayload(msg.Values)
			if !ok {
				continue
			}
			out = append(out, domain.StreamMessage{ID: msg.ID, Payload: payload})
		}
	}
	return out, nil
}

// streamPayload extracts the raw payload field from a stream entry. The
// driver hands values back as strings; entries without a payload field are
// skipped rather than failing the whole read.
func streamPayload(values map[string]interface{}) ([]byte, bool) {
	switch v := values["payload"].(type) {
	case string:
		return []byte(v), true
	case []byte:
		return v, true
	default:
		return nil, false
	}
}

var _ domain.SignalBus = (*SignalBus)(nil)
