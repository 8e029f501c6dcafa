package infer

import (
	"sync"

	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/types"
)

// FreshnessFunc reports whether a cached result for node under key may still
// be used.  Hosts use it to invalidate results after a source changes.
type FreshnessFunc func(node decl.Node, key string) bool

type cacheKey struct {
	node decl.Node
	key  string
}

type cacheEntry struct {
	ty types.Ty
	ok bool
}

// CacheStats counts cache traffic since creation or the last Reset.
type CacheStats struct {
	Hits    int
	Misses  int
	Evicted int
}

// Cache memoizes inference results by (node, analysis key).
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	fresh   FreshnessFunc
	stats   CacheStats
}

// NewCache creates a cache.  A nil fresh treats every entry as fresh.
func NewCache(fresh FreshnessFunc) *Cache {
	return &Cache{entries: map[cacheKey]cacheEntry{}, fresh: fresh}
}

// Get returns the cached result.  found is false on a miss or when the entry
// was stale, in which case it is dropped.
func (c *Cache) Get(node decl.Node, key string) (t types.Ty, ok bool, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := cacheKey{node, key}
	entry, hit := c.entries[k]
	if !hit {
		c.stats.Misses++
		return nil, false, false
	}
	if c.fresh != nil && !c.fresh(node, key) {
		delete(c.entries, k)
		c.stats.Evicted++
		c.stats.Misses++
		return nil, false, false
	}
	c.stats.Hits++
	return entry.ty, entry.ok, true
}

func (c *Cache) Put(node decl.Node, key string, t types.Ty, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{node, key}] = cacheEntry{ty: t, ok: ok}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Reset drops every entry and clears the counters.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[cacheKey]cacheEntry{}
	c.stats = CacheStats{}
}
