package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/slotbook/internal/domain/booking"
	"github.com/example/slotbook/internal/infrastructure/metrics"
)

const DefaultKey = "slotbook:slots"

// SlotCache keeps the backend's raw slot batches in redis. Raw batches are
// cached rather than converted maps so every timezone shares one entry.
type SlotCache struct {
	rdb     *redis.Client
	source  booking.SlotSource
	ttl     time.Duration
	key     string
	metrics *metrics.BookingMetrics
	log     *zap.Logger
}

func NewSlotCache(rdb *redis.Client, source booking.SlotSource, ttl time.Duration, m *metrics.BookingMetrics, log *zap.Logger) *SlotCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &SlotCache{rdb: rdb, source: source, ttl: ttl, key: DefaultKey, metrics: m, log: log}
}

// NewRedisClient connects and pings redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// FetchAvailableSlots serves from redis when possible and falls through to
// the source on a miss or any redis fault.
func (c *SlotCache) FetchAvailableSlots(ctx context.Context) ([]booking.RawSlotBatch, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var batches []booking.RawSlotBatch
		if jerr := json.Unmarshal(raw, &batches); jerr == nil {
			c.metrics.ObserveCache(true)
			return batches, nil
		}
		c.log.Warn("discarding undecodable slot cache entry", zap.String("key", c.key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("slot cache read failed", zap.Error(err))
	}
	c.metrics.ObserveCache(false)
	return c.Refresh(ctx)
}

// Refresh fetches from the source and overwrites the cached entry.
func (c *SlotCache) Refresh(ctx context.Context) ([]booking.RawSlotBatch, error) {
	batches, err := c.source.FetchAvailableSlots(ctx)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(batches)
	if err != nil {
		return batches, nil
	}
	if err := c.rdb.Set(ctx, c.key, b, c.ttl).Err(); err != nil {
		c.log.Warn("slot cache write failed", zap.Error(err))
	}
	return batches, nil
}

// Invalidate drops the cached entry, e.g. after a booking takes a slot.
func (c *SlotCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}
