package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang-stock-watchlist/pkg/logger"

	"github.com/redis/go-redis/v9"
)

type redisCache[T any] struct {
	client *redis.Client
	prefix string
	now    Clock
	log    *logger.Logger
}

// NewRedis returns a cache shared across processes. Values are JSON encoded.
func NewRedis[T any](client *redis.Client, prefix string, now Clock, log *logger.Logger) Cache[T] {
	if now == nil {
		now = time.Now
	}
	return &redisCache[T]{client: client, prefix: prefix, now: now, log: log}
}

func (c *redisCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "Failed to read cache entry", logger.StringField("key", key), logger.ErrorField(err))
		}
		return zero, false
	}

	var entry Entry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.log.WarnContext(ctx, "Failed to decode cache entry", logger.StringField("key", key), logger.ErrorField(err))
		return zero, false
	}
	if entry.expired(c.now()) {
		return zero, false
	}
	return entry.Value, true
}

func (c *redisCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) {
	raw, err := json.Marshal(newEntry(value, ttl, c.now()))
	if err != nil {
		c.log.WarnContext(ctx, "Failed to encode cache entry", logger.StringField("key", key), logger.ErrorField(err))
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "Failed to write cache entry", logger.StringField("key", key), logger.ErrorField(err))
	}
}

func (c *redisCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.log.WarnContext(ctx, "Failed to delete cache entry", logger.StringField("key", key), logger.ErrorField(err))
	}
}
