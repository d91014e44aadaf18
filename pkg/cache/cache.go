// Package cache provides time-expiring key/value stores. Every entry carries
// its own expiry timestamp, checked against an injectable clock on read.
package cache

import (
	"context"
	"time"
)

// Cache stores values of type T under string keys.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, bool)
	Set(ctx context.Context, key string, value T, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Entry is the stored form of a value.
type Entry[T any] struct {
	Value     T         `json:"value"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (e Entry[T]) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Clock returns the current time.
type Clock func() time.Time

func newEntry[T any](value T, ttl time.Duration, now time.Time) Entry[T] {
	e := Entry[T]{Value: value, StoredAt: now}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	return e
}
