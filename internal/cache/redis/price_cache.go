package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stiliyangoshev97/JNGLZ-sub004/internal/domain"
)

// priceTTL bounds how long a cached quote can be served. Stale entries fall
// through to the engine.
const priceTTL = 30 * time.Second

// PriceCache implements domain.PriceCache using Redis hashes. Each market's
// spot prices are stored as a hash at key "price:{marketID}" with fields
// "yes", "no", and "ts" (Unix nanosecond timestamp).
type PriceCache struct {
	rdb *redis.Client
}

// NewPriceCache creates a PriceCache backed by the given Client.
func NewPriceCache(c *Client) *PriceCache {
	return &PriceCache{rdb: c.rdb}
}

func priceKey(marketID string) string {
	return "price:" + marketID
}

// SetPrices stores the latest spot prices for a market, in micro-units per
// share.
func (pc *PriceCache) SetPrices(ctx context.Context, marketID string, yes, no int64, ts time.Time) error {
	key := priceKey(marketID)
	fields := map[string]interface{}{
		"yes": strconv.FormatInt(yes, 10),
		"no":  strconv.FormatInt(no, 10),
		"ts":  strconv.FormatInt(ts.UnixNano(), 10),
	}

	pipe := pc.rdb.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, priceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set prices %s: %w", marketID, err)
	}
	return nil
}

// GetPrices retrieves the cached spot prices for a market. It returns
// domain.ErrNotFound when the key does not exist or has expired.
func (pc *PriceCache) GetPrices(ctx context.Context, marketID string) (yes, no int64, ts time.Time, err error) {
	vals, err := pc.rdb.HGetAll(ctx, priceKey(marketID)).Result()
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("redis: get prices %s: %w", marketID, err)
	}
	if len(vals) == 0 {
		return 0, 0, time.Time{}, domain.ErrNotFound
	}

	yes, err = parseField(vals, "yes", marketID)
	if err != nil {
		return 0, 0, time.Time{}, err
	}
	no, err = parseField(vals, "no", marketID)
	if err != nil {
		return 0, 0, time.Time{}, err
	}
	tsNano, err := parseField(vals, "ts", marketID)
	if err != nil {
		return 0, 0, time.Time{}, err
	}

	return yes, no, time.Unix(0, tsNano), nil
}

// parseField extracts one int64 hash field, treating a missing field as a
// missing entry.
func parseField(vals map[string]string, field, marketID string) (int64, error) {
	s, ok := vals[field]
	if !ok {
		return 0, domain.ErrNotFound
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis: parse %s for %s: %w", field, marketID, err)
	}
	return n, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)
