package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryCache[T any] struct {
	store *gocache.Cache
	now   Clock
}

// NewMemory returns an in-process cache. A nil clock uses time.Now.
func NewMemory[T any](cleanupInterval time.Duration, now Clock) Cache[T] {
	if now == nil {
		now = time.Now
	}
	return &memoryCache[T]{
		store: gocache.New(gocache.NoExpiration, cleanupInterval),
		now:   now,
	}
}

func (c *memoryCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	raw, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	entry, ok := raw.(Entry[T])
	if !ok || entry.expired(c.now()) {
		c.store.Delete(key)
		return zero, false
	}
	return entry.Value, true
}

func (c *memoryCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) {
	expiration := gocache.NoExpiration
	if ttl > 0 {
		expiration = ttl
	}
	c.store.Set(key, newEntry(value, ttl, c.now()), expiration)
}

func (c *memoryCache[T]) Delete(ctx context.Context, key string) {
	c.store.Delete(key)
}
