package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCache_GetOrCompute(t *testing.T) {
	c := New(Config{})
	ctx := context.Background()
	params := map[string]any{"year": 2024, "zone": "CABA"}

	calls := 0
	produce := func(context.Context) (any, error) {
		calls++
		return "payload", nil
	}

	payload, hit, err := c.GetOrCompute(ctx, "report", params, produce)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "payload", payload)

	payload, hit, err = c.GetOrCompute(ctx, "report", params, produce)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "payload", payload)
	assert.Equal(t, 1, calls)
}

func TestQueryCache_ParameterNormalization(t *testing.T) {
	c := New(Config{})
	ctx := context.Background()

	calls := 0
	produce := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	_, hit, err := c.GetOrCompute(ctx, "report", map[string]any{"limit": 15}, produce)
	require.NoError(t, err)
	assert.False(t, hit)

	// The same logical value in a different representation hits.
	_, hit, err = c.GetOrCompute(ctx, "report", map[string]any{"limit": "15"}, produce)
	require.NoError(t, err)
	assert.True(t, hit)

	_, hit, err = c.GetOrCompute(ctx, "report", map[string]any{"limit": int64(15)}, produce)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, 1, calls)
}

func TestQueryCache_DistinctParamsMiss(t *testing.T) {
	c := New(Config{})
	ctx := context.Background()
	produce := func(context.Context) (any, error) { return "x", nil }

	_, hit, _ := c.GetOrCompute(ctx, "report", map[string]any{"zone": "CABA"}, produce)
	assert.False(t, hit)
	_, hit, _ = c.GetOrCompute(ctx, "report", map[string]any{"zone": "CANTAL"}, produce)
	assert.False(t, hit)
	// Same params under another category are a different entry.
	_, hit, _ = c.GetOrCompute(ctx, "dashboard", map[string]any{"zone": "CABA"}, produce)
	assert.False(t, hit)
}

func TestQueryCache_ErrorsAreNotCached(t *testing.T) {
	c := New(Config{})
	ctx := context.Background()
	params := map[string]any{"k": "v"}

	calls := 0
	failing := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("store down")
		}
		return "ok", nil
	}

	_, _, err := c.GetOrCompute(ctx, "report", params, failing)
	require.Error(t, err)

	payload, hit, err := c.GetOrCompute(ctx, "report", params, failing)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "ok", payload)
}

func TestQueryCache_TTLExpiry(t *testing.T) {
	c := New(Config{
		DefaultTTL: time.Hour,
		TTLs:       map[string]time.Duration{"pinned": 0},
	})
	ctx := context.Background()

	now := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	produce := func(context.Context) (any, error) { return "v", nil }

	_, _, err := c.GetOrCompute(ctx, "report", map[string]any{"k": 1}, produce)
	require.NoError(t, err)
	_, _, err = c.GetOrCompute(ctx, "pinned", map[string]any{"k": 1}, produce)
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, hit, _ := c.GetOrCompute(ctx, "report", map[string]any{"k": 1}, produce)
	assert.True(t, hit)

	now = now.Add(time.Hour)
	_, hit, _ = c.GetOrCompute(ctx, "report", map[string]any{"k": 1}, produce)
	assert.False(t, hit, "entry past its TTL must recompute")

	// Zero TTL pins the category forever.
	now = now.Add(1000 * time.Hour)
	_, hit, _ = c.GetOrCompute(ctx, "pinned", map[string]any{"k": 1}, produce)
	assert.True(t, hit)
}

func TestQueryCache_Sweep(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute})
	ctx := context.Background()

	now := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	produce := func(context.Context) (any, error) { return "v", nil }
	_, _, _ = c.GetOrCompute(ctx, "report", map[string]any{"k": 1}, produce)
	_, _, _ = c.GetOrCompute(ctx, "report", map[string]any{"k": 2}, produce)

	assert.Equal(t, 0, c.Sweep())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, c.Sweep())
	assert.Equal(t, 0, c.Sweep())
}

func TestQueryCache_Invalidate(t *testing.T) {
	c := New(Config{})
	ctx := context.Background()
	produce := func(context.Context) (any, error) { return "v", nil }

	_, _, _ = c.GetOrCompute(ctx, "report", map[string]any{"k": 1}, produce)
	_, _, _ = c.GetOrCompute(ctx, "report", map[string]any{"k": 2}, produce)
	_, _, _ = c.GetOrCompute(ctx, "dashboard", map[string]any{"k": 1}, produce)

	assert.Equal(t, 2, c.Invalidate("report"))

	_, hit, _ := c.GetOrCompute(ctx, "dashboard", map[string]any{"k": 1}, produce)
	assert.True(t, hit, "other categories survive")

	assert.Equal(t, 2, c.InvalidateAll())
}

func TestQueryCache_Stats(t *testing.T) {
	c := New(Config{DefaultTTL: time.Hour})
	ctx := context.Background()
	produce := func(context.Context) (any, error) { return "v", nil }

	_, _, _ = c.GetOrCompute(ctx, "report", map[string]any{"k": 1}, produce)
	_, _, _ = c.GetOrCompute(ctx, "report", map[string]any{"k": 1}, produce)
	_, _, _ = c.GetOrCompute(ctx, "report", map[string]any{"k": 2}, produce)

	stats := c.Stats()
	require.Contains(t, stats, "report")
	assert.Equal(t, 2, stats["report"].Entries)
	assert.Equal(t, uint64(1), stats["report"].Hits)
	assert.Equal(t, uint64(2), stats["report"].Misses)
	assert.Equal(t, time.Hour, stats["report"].TTL)
}

func TestQueryCache_ConcurrentAccess(t *testing.T) {
	c := New(Config{})
	ctx := context.Background()

	var produced atomic.Int64
	produce := func(context.Context) (any, error) {
		produced.Add(1)
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			params := map[string]any{"k": i % 4}
			payload, _, err := c.GetOrCompute(ctx, "report", params, produce)
			assert.NoError(t, err)
			assert.Equal(t, "v", payload)
		}(i)
	}
	wg.Wait()

	// Concurrent misses may race but every distinct key computed at
	// least once and nothing deadlocked.
	assert.GreaterOrEqual(t, produced.Load(), int64(4))
	assert.Equal(t, 4, c.InvalidateAll())
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("report", map[string]any{"a": 1, "b": "x"})
	b := Fingerprint("report", map[string]any{"b": "x", "a": 1})
	assert.Equal(t, a, b, "key order must not matter")

	ts := time.Date(2024, time.July, 1, 14, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	utc := Fingerprint("report", map[string]any{"t": ts})
	same := Fingerprint("report", map[string]any{"t": ts.UTC()})
	assert.Equal(t, utc, same, "times are canonicalized to UTC")

	assert.NotEqual(t, a, Fingerprint("dashboard", map[string]any{"a": 1, "b": "x"}))
}
