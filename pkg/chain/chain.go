// Package chain resolves a value by trying an ordered list of providers until
// one of them yields a usable result.
package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-stock-watchlist/pkg/logger"
)

var (
	// ErrNoData marks a provider call that succeeded but produced nothing usable.
	ErrNoData = errors.New("provider returned no data")
	// ErrExhausted is returned when every provider failed.
	ErrExhausted = errors.New("all providers failed")
)

// Provider is one upstream source for a value of type T keyed by K.
type Provider[K, T any] interface {
	Name() string
	Resolve(ctx context.Context, key K) (T, error)
}

type funcProvider[K, T any] struct {
	name string
	fn   func(ctx context.Context, key K) (T, error)
}

// Func adapts a function to a Provider.
func Func[K, T any](name string, fn func(ctx context.Context, key K) (T, error)) Provider[K, T] {
	return &funcProvider[K, T]{name: name, fn: fn}
}

func (p *funcProvider[K, T]) Name() string { return p.name }

func (p *funcProvider[K, T]) Resolve(ctx context.Context, key K) (T, error) {
	return p.fn(ctx, key)
}

// ProviderError records why a single provider attempt was rejected.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a chain resolution.
type Result[T any] struct {
	Value    T
	Provider string
	Attempts []*ProviderError
	Err      error
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

// UnwrapOr returns the resolved value, or def when the chain was exhausted.
func (r Result[T]) UnwrapOr(def T) T {
	if r.Err != nil {
		return def
	}
	return r.Value
}

// Chain tries providers sequentially. Later providers are never invoked once
// one returns a non-empty value.
type Chain[K, T any] struct {
	name      string
	log       *logger.Logger
	providers []Provider[K, T]
	isEmpty   func(T) bool
	delay     time.Duration
	timeout   time.Duration
}

// New builds a chain over providers in priority order.
func New[K, T any](name string, log *logger.Logger, providers ...Provider[K, T]) *Chain[K, T] {
	if log == nil {
		log = logger.NewNop()
	}
	return &Chain[K, T]{
		name:      name,
		log:       log,
		providers: providers,
	}
}

// WithEmpty sets the predicate that classifies a successful value as unusable.
func (c *Chain[K, T]) WithEmpty(isEmpty func(T) bool) *Chain[K, T] {
	c.isEmpty = isEmpty
	return c
}

// WithDelay sets the pause inserted after a failed attempt.
func (c *Chain[K, T]) WithDelay(d time.Duration) *Chain[K, T] {
	c.delay = d
	return c
}

// WithTimeout bounds every provider attempt.
func (c *Chain[K, T]) WithTimeout(d time.Duration) *Chain[K, T] {
	c.timeout = d
	return c
}

// Providers returns the provider names in order.
func (c *Chain[K, T]) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Resolve returns the first usable value.
func (c *Chain[K, T]) Resolve(ctx context.Context, key K) Result[T] {
	var result Result[T]

	for i, p := range c.providers {
		if ctx.Err() != nil {
			result.Attempts = append(result.Attempts, &ProviderError{Provider: p.Name(), Err: ctx.Err()})
			break
		}

		value, err := c.attempt(ctx, p, key)
		if err == nil && c.isEmpty != nil && c.isEmpty(value) {
			err = ErrNoData
		}
		if err == nil {
			c.log.DebugContext(ctx, "Chain resolved",
				logger.StringField("chain", c.name),
				logger.StringField("provider", p.Name()),
				logger.Field("key", key),
				logger.IntField("failed_attempts", len(result.Attempts)),
			)
			result.Value = value
			result.Provider = p.Name()
			return result
		}

		c.log.WarnContext(ctx, "Chain provider failed",
			logger.StringField("chain", c.name),
			logger.StringField("provider", p.Name()),
			logger.Field("key", key),
			logger.ErrorField(err),
		)
		result.Attempts = append(result.Attempts, &ProviderError{Provider: p.Name(), Err: err})

		if c.delay > 0 && i < len(c.providers)-1 {
			if !sleep(ctx, c.delay) {
				result.Attempts = append(result.Attempts, &ProviderError{Provider: c.name, Err: ctx.Err()})
				break
			}
		}
	}

	errs := make([]error, 0, len(result.Attempts))
	for _, a := range result.Attempts {
		errs = append(errs, a)
	}
	result.Err = fmt.Errorf("%s: %w: %w", c.name, ErrExhausted, errors.Join(errs...))
	c.log.WarnContext(ctx, "Chain exhausted",
		logger.StringField("chain", c.name),
		logger.Field("key", key),
		logger.IntField("attempts", len(result.Attempts)),
	)
	return result
}

// ResolveOr returns the first usable value or def.
func (c *Chain[K, T]) ResolveOr(ctx context.Context, key K, def T) T {
	return c.Resolve(ctx, key).UnwrapOr(def)
}

type outcome[T any] struct {
	value T
	err   error
}

func (c *Chain[K, T]) attempt(ctx context.Context, p Provider[K, T], key K) (T, error) {
	if c.timeout <= 0 {
		return call(ctx, p, key)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		v, err := call(attemptCtx, p, key)
		done <- outcome[T]{value: v, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-attemptCtx.Done():
		var zero T
		return zero, fmt.Errorf("provider timed out: %w", attemptCtx.Err())
	}
}

func call[K, T any](ctx context.Context, p Provider[K, T], key K) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panicked: %v", r)
		}
	}()
	return p.Resolve(ctx, key)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
