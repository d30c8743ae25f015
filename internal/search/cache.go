package search

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ATKuehn/supersearch/internal/metrics"
)

// cacheKey produces a canonical fingerprint of a classified query. Terms
// are sorted within their class first, so queries that differ only in token
// order share one cache entry.
func (p parsedQuery) cacheKey() string {
	required := make([]string, 0, len(p.required))
	for _, t := range p.required {
		required = append(required, fmt.Sprintf("%d:%s", t.kind, t.key))
	}
	sort.Strings(required)

	excluded := make([]string, 0, len(p.excluded))
	for _, t := range p.excluded {
		excluded = append(excluded, t.key)
	}
	sort.Strings(excluded)

	sum := sha256.Sum256([]byte(strings.Join(required, "\x1f") + "\x1e" + strings.Join(excluded, "\x1f")))
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	ranked    []DocumentScore
	expiresAt time.Time
}

// QueryCache memoizes ranked query results. Concurrent identical queries
// are collapsed into a single computation via singleflight. The cache must
// be invalidated whenever index contents change.
type QueryCache struct {
	ttl        time.Duration
	maxEntries int
	metrics    *metrics.Metrics

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]cacheEntry

	hits   atomic.Int64
	misses atomic.Int64
}

// NewQueryCache creates a cache holding at most maxEntries results for ttl
// each. A ttl <= 0 disables expiry; maxEntries <= 0 selects a default cap.
// The metrics handle may be nil.
func NewQueryCache(ttl time.Duration, maxEntries int, m *metrics.Metrics) *QueryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &QueryCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		metrics:    m,
		entries:    make(map[string]cacheEntry),
	}
}

// getOrCompute returns the cached ranking for key, computing and storing it
// on a miss. Concurrent callers with the same key share one computation.
func (c *QueryCache) getOrCompute(key string, compute func() []DocumentScore) []DocumentScore {
	if ranked, ok := c.get(key); ok {
		c.recordHit()
		return ranked
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		// Another flight may have stored the entry between our miss and
		// acquiring the flight.
		if ranked, ok := c.get(key); ok {
			c.recordHit()
			return ranked, nil
		}
		c.recordMiss()
		ranked := compute()
		c.put(key, ranked)
		return ranked, nil
	})
	return v.([]DocumentScore)
}

func (c *QueryCache) get(key string) ([]DocumentScore, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.ranked, true
}

func (c *QueryCache) put(key string, ranked []DocumentScore) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Full reset when the cap is reached keeps the cache bounded without
	// tracking access order.
	if len(c.entries) >= c.maxEntries {
		c.entries = make(map[string]cacheEntry)
	}
	c.entries[key] = cacheEntry{
		ranked:    ranked,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate drops every cached result. It must be called after any index
// mutation (reindexing, snapshot load, clear).
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Stats returns the cumulative hit and miss counts.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
