package service

import (
	"context"
	"time"

	"golang-stock-watchlist/pkg/cache"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/symbol"

	"golang.org/x/sync/singleflight"
)

// TableLoader downloads the full table for one market.
type TableLoader[T any] func(ctx context.Context, market symbol.Market) (T, error)

const defaultTableLoadTimeout = 2 * time.Minute

// TableCache keeps one full table per key and serves lookups from memory
// until the entry expires. Concurrent misses for the same key share one
// download. A download outlives the caller that started it, so a slow table
// still lands in the cache after its first reader has given up.
type TableCache[T any] struct {
	name        string
	cache       cache.Cache[T]
	ttl         time.Duration
	load        TableLoader[T]
	log         *logger.Logger
	group       singleflight.Group
	keyOf       func(symbol.Market) string
	loadTimeout time.Duration
}

func NewTableCache[T any](name string, c cache.Cache[T], ttl time.Duration, load TableLoader[T], log *logger.Logger) *TableCache[T] {
	return &TableCache[T]{
		name:        name,
		cache:       c,
		ttl:         ttl,
		load:        load,
		log:         log,
		keyOf:       symbol.Market.String,
		loadTimeout: defaultTableLoadTimeout,
	}
}

// WithKey sets how markets map to cache entries. Markets served by the same
// upstream table should map to the same key.
func (t *TableCache[T]) WithKey(keyOf func(symbol.Market) string) *TableCache[T] {
	t.keyOf = keyOf
	return t
}

// WithLoadTimeout bounds one download.
func (t *TableCache[T]) WithLoadTimeout(d time.Duration) *TableCache[T] {
	if d > 0 {
		t.loadTimeout = d
	}
	return t
}

func (t *TableCache[T]) key(market symbol.Market) string {
	return "table:" + t.name + ":" + t.keyOf(market)
}

// Get returns the cached table for market, loading it on a miss. It returns
// early with ctx's error when ctx ends first.
func (t *TableCache[T]) Get(ctx context.Context, market symbol.Market) (T, error) {
	var zero T
	key := t.key(market)
	if table, ok := t.cache.Get(ctx, key); ok {
		return table, nil
	}

	ch := t.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.loadTimeout)
		defer cancel()

		if table, ok := t.cache.Get(loadCtx, key); ok {
			return table, nil
		}
		table, err := t.load(loadCtx, market)
		if err != nil {
			return nil, err
		}
		t.cache.Set(loadCtx, key, table, t.ttl)
		t.log.DebugContext(loadCtx, "Table cached",
			logger.StringField("table", t.name),
			logger.StringField("key", key),
			logger.DurationField("ttl", t.ttl),
		)
		return table, nil
	})

	select {
	case <-ctx.Done():
		t.log.DebugContext(ctx, "Stopped waiting for table load",
			logger.StringField("table", t.name),
			logger.StringField("market", market.String()),
		)
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			t.log.DebugContext(ctx, "Table load shared", logger.StringField("table", t.name))
		}
		return res.Val.(T), nil
	}
}

// Invalidate drops the cached table for market.
func (t *TableCache[T]) Invalidate(ctx context.Context, market symbol.Market) {
	t.cache.Delete(ctx, t.key(market))
}
