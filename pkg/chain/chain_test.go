package chain

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	name  string
	value string
	err   error
	calls atomic.Int32
}

func (p *countingProvider) Name() string { return p.name }

func (p *countingProvider) Resolve(ctx context.Context, key string) (string, error) {
	p.calls.Add(1)
	return p.value, p.err
}

func TestResolve_ShortCircuitsOnFirstSuccess(t *testing.T) {
	first := &countingProvider{name: "first", err: errors.New("boom")}
	second := &countingProvider{name: "second", value: "ok"}
	third := &countingProvider{name: "third", value: "never"}

	res := New[string, string]("test", nil, first, second, third).Resolve(context.Background(), "k")

	require.True(t, res.OK())
	assert.Equal(t, "ok", res.Value)
	assert.Equal(t, "second", res.Provider)
	assert.Len(t, res.Attempts, 1)
	assert.EqualValues(t, 1, first.calls.Load())
	assert.EqualValues(t, 1, second.calls.Load())
	assert.EqualValues(t, 0, third.calls.Load())
}

func TestResolve_ExhaustedReturnsDefault(t *testing.T) {
	c := New[string, string]("test", nil,
		&countingProvider{name: "a", err: errors.New("down")},
		&countingProvider{name: "b", value: ""},
	).WithEmpty(func(s string) bool { return s == "" })

	res := c.Resolve(context.Background(), "k")

	require.False(t, res.OK())
	assert.ErrorIs(t, res.Err, ErrExhausted)
	assert.ErrorIs(t, res.Err, ErrNoData)
	assert.Len(t, res.Attempts, 2)
	assert.Equal(t, "fallback", res.UnwrapOr("fallback"))
	assert.Equal(t, "fallback", c.ResolveOr(context.Background(), "k", "fallback"))
}

func TestResolve_EmptyValueAdvances(t *testing.T) {
	c := New[string, []int]("test", nil,
		Func("empty", func(ctx context.Context, key string) ([]int, error) { return nil, nil }),
		Func("full", func(ctx context.Context, key string) ([]int, error) { return []int{1}, nil }),
	).WithEmpty(func(v []int) bool { return len(v) == 0 })

	res := c.Resolve(context.Background(), "k")
	require.True(t, res.OK())
	assert.Equal(t, "full", res.Provider)
	assert.Equal(t, []int{1}, res.Value)
}

func TestResolve_PanicIsTreatedAsFailure(t *testing.T) {
	c := New[string, string]("test", nil,
		Func("panics", func(ctx context.Context, key string) (string, error) { panic("unexpected shape") }),
		Func("works", func(ctx context.Context, key string) (string, error) { return "v", nil }),
	)

	res := c.Resolve(context.Background(), "k")
	require.True(t, res.OK())
	assert.Equal(t, "v", res.Value)
	require.Len(t, res.Attempts, 1)
	assert.Contains(t, res.Attempts[0].Error(), "panicked")
}

func TestResolve_TimeoutBoundsSlowProvider(t *testing.T) {
	c := New[string, string]("test", nil,
		Func("slow", func(ctx context.Context, key string) (string, error) {
			select {
			case <-time.After(2 * time.Second):
				return "late", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}),
		Func("fast", func(ctx context.Context, key string) (string, error) { return "fast", nil }),
	).WithTimeout(20 * time.Millisecond)

	start := time.Now()
	res := c.Resolve(context.Background(), "k")
	assert.Less(t, time.Since(start), time.Second)
	require.True(t, res.OK())
	assert.Equal(t, "fast", res.Value)
	assert.ErrorIs(t, res.Attempts[0], context.DeadlineExceeded)
}

func TestResolve_DelayOnlyBetweenFailures(t *testing.T) {
	c := New[string, string]("test", nil,
		Func("a", func(ctx context.Context, key string) (string, error) { return "", errors.New("x") }),
		Func("b", func(ctx context.Context, key string) (string, error) { return "", errors.New("y") }),
	).WithDelay(30 * time.Millisecond)

	start := time.Now()
	res := c.Resolve(context.Background(), "k")
	elapsed := time.Since(start)

	assert.False(t, res.OK())
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Less(t, elapsed, 60*time.Millisecond*10)
}

func TestResolve_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &countingProvider{name: "a", value: "v"}

	res := New[string, string]("test", nil, p).Resolve(ctx, "k")
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.EqualValues(t, 0, p.calls.Load())
}

func TestProviders(t *testing.T) {
	c := New[string, string]("test", nil,
		&countingProvider{name: "a"},
		&countingProvider{name: "b"},
	)
	assert.Equal(t, []string{"a", "b"}, c.Providers())
}
