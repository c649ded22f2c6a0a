package registry

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// cacheEntry is the value stored per (op, key), matching spec §4.3's
// `{ value, fetched_at, soft_ttl, hard_ttl }` shape.
type cacheEntry struct {
	value     any
	fetchedAt time.Time
	softTTL   time.Duration
	hardTTL   time.Duration
	offlineOK bool
}

func (e *cacheEntry) softExpired() bool { return time.Since(e.fetchedAt) > e.softTTL }
func (e *cacheEntry) hardExpired() bool { return time.Since(e.fetchedAt) > e.hardTTL }

// Cache is the generic (op, key) -> value TTL cache with single-flight
// coalescing described in spec §4.3 and §5. It is generic over the
// operation-and-key tuple per spec §9's design note ("Keep the cache
// generic over the operation-and-key tuple").
type Cache struct {
	mu    sync.RWMutex
	lru   *lru.Cache[string, *cacheEntry]
	group singleflight.Group

	SoftTTL time.Duration
	HardTTL time.Duration
}

// NewCache builds a cache bounded to capacity entries (an addition beyond
// spec §4.3's literal TTL description — see SPEC_FULL.md's rationale for
// backstopping TTL expiry with an LRU eviction policy).
func NewCache(capacity int, softTTL, hardTTL time.Duration) *Cache {
	l, _ := lru.New[string, *cacheEntry](capacity)
	return &Cache{lru: l, SoftTTL: softTTL, HardTTL: hardTTL}
}

// Fetch returns the cached value for key if fresh, serving a soft-expired
// entry immediately while kicking off an async refresh, or blocking on a
// fresh fetch if hard-expired or absent. Concurrent calls for the same key
// coalesce onto one in-flight fetch via the single-flight group — "the
// number of concurrent in-flight fetches for k is ≤ 1 at any instant"
// (spec §8).
func (c *Cache) Fetch(ctx context.Context, key string, fetch func(context.Context) (any, error)) (StaleResult[any], error) {
	c.mu.RLock()
	entry, ok := c.lru.Get(key)
	c.mu.RUnlock()

	if ok && !entry.hardExpired() {
		if entry.softExpired() {
			go c.refreshAsync(key, fetch)
		}
		return StaleResult[any]{Value: entry.value, Stale: entry.softExpired()}, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		if ok && entry.offlineOK {
			return StaleResult[any]{Value: entry.value, Stale: true}, nil
		}
		return StaleResult[any]{}, err
	}
	c.store(key, v, false)
	return StaleResult[any]{Value: v}, nil
}

func (c *Cache) refreshAsync(key string, fetch func(context.Context) (any, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	v, err, _ := c.group.Do(key, func() (any, error) { return fetch(ctx) })
	if err != nil {
		// Refresh failed: mark the existing entry offline-ok so a
		// subsequent network outage can keep serving it past its TTL,
		// per the invariant's escape hatch.
		c.mu.Lock()
		if e, ok := c.lru.Get(key); ok {
			e.offlineOK = true
		}
		c.mu.Unlock()
		return
	}
	c.store(key, v, false)
}

func (c *Cache) store(key string, value any, offlineOK bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, &cacheEntry{
		value:     value,
		fetchedAt: time.Now(),
		softTTL:   c.SoftTTL,
		hardTTL:   c.HardTTL,
		offlineOK: offlineOK,
	})
}

// Invalidate drops a cached key, used when a mutation (e.g. an explicit
// "update" shell-out) should force the next read to refetch.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}
