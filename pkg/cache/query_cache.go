// Package cache is the fingerprint-keyed report cache. Categories
// namespace the entries so a data reload can invalidate one report
// family without touching the others.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Producer computes the payload on a cache miss. It must be a pure
// function of the parameters that formed the fingerprint.
type Producer func(ctx context.Context) (any, error)

// Config carries per-category TTLs. A zero TTL means entries never
// expire and are only removed by explicit invalidation.
type Config struct {
	DefaultTTL time.Duration
	TTLs       map[string]time.Duration
}

type entry struct {
	category  string
	payload   any
	createdAt time.Time
}

// CategoryStats is the per-category view exposed on the admin surface.
type CategoryStats struct {
	Entries int           `json:"entries"`
	Hits    uint64        `json:"hits"`
	Misses  uint64        `json:"misses"`
	TTL     time.Duration `json:"ttl_ns"`
}

type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	hits    map[string]uint64
	misses  map[string]uint64
	cfg     Config
	now     func() time.Time
}

func New(cfg Config) *QueryCache {
	return &QueryCache{
		entries: map[string]entry{},
		hits:    map[string]uint64{},
		misses:  map[string]uint64{},
		cfg:     cfg,
		now:     time.Now,
	}
}

// GetOrCompute returns the cached payload for (category, params) or
// invokes produce and stores its result. The second return reports a
// hit. Concurrent misses on one fingerprint may both compute; the
// producer is pure, so the second write overwrites with an equal value.
// Failed producers are never cached.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	category string,
	params map[string]any,
	produce Producer,
) (any, bool, error) {
	key := Fingerprint(category, params)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && !c.expired(e) {
		c.count(c.hits, category)
		return e.payload, true, nil
	}
	c.count(c.misses, category)

	payload, err := produce(ctx)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.entries[key] = entry{category: category, payload: payload, createdAt: c.now()}
	c.mu.Unlock()

	return payload, false, nil
}

// Invalidate drops every entry of a category and returns the count.
func (c *QueryCache) Invalidate(category string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key, e := range c.entries {
		if e.category == category {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

// InvalidateAll clears the cache and returns the entry count removed.
func (c *QueryCache) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := len(c.entries)
	c.entries = map[string]entry{}
	return dropped
}

// Sweep removes expired entries. Run from a periodic task; each call
// holds the lock once.
func (c *QueryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	swept := 0
	for key, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, key)
			swept++
		}
	}
	return swept
}

// Stats reports per-category entry counts and hit/miss counters.
func (c *QueryCache) Stats() map[string]CategoryStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := map[string]CategoryStats{}
	for _, e := range c.entries {
		s := stats[e.category]
		s.Entries++
		stats[e.category] = s
	}
	for category, hits := range c.hits {
		s := stats[category]
		s.Hits = hits
		stats[category] = s
	}
	for category, misses := range c.misses {
		s := stats[category]
		s.Misses = misses
		stats[category] = s
	}
	for category, s := range stats {
		s.TTL = c.ttl(category)
		stats[category] = s
	}
	return stats
}

func (c *QueryCache) expired(e entry) bool {
	ttl := c.ttl(e.category)
	if ttl <= 0 {
		return false
	}
	return c.now().Sub(e.createdAt) > ttl
}

func (c *QueryCache) ttl(category string) time.Duration {
	if ttl, ok := c.cfg.TTLs[category]; ok {
		return ttl
	}
	return c.cfg.DefaultTTL
}

func (c *QueryCache) count(counters map[string]uint64, category string) {
	c.mu.Lock()
	counters[category]++
	c.mu.Unlock()
}

// Fingerprint hashes a category and a normalized parameter set. Keys
// are sorted and values coerced to one canonical textual form, so
// logically identical requests (limit=15 vs limit="15") collide.
func Fingerprint(category string, params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(category)
	for _, k := range keys {
		b.WriteByte(0x1f)
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(canonicalValue(params[k]))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func canonicalValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}
