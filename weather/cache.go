package weather

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Key addresses the assessment cache. Coordinates are rounded to two
// decimals (~1.1km grid) so nearby lookups share one upstream call.
type Key struct {
	Lat float64
	Lon float64
}

// KeyFor rounds coordinates to the cache grid. math.Round rounds half
// away from zero, so the same input always lands on the same key.
func KeyFor(lat, lon float64) Key {
	return Key{Lat: roundTo(lat, 2), Lon: roundTo(lon, 2)}
}

func roundTo(v float64, decimals int) float64 {
	f := math.Pow(10, float64(decimals))
	return math.Round(v*f) / f
}

type cacheEntry struct {
	value     Assessment
	expiresAt time.Time
}

// Cache memoizes assessments per grid key with a TTL. Concurrent lookups
// for the same key may both miss and both write; last write wins, which is
// fine because values for one key converge within the TTL window.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]cacheEntry
	ttl     time.Duration
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache with the given TTL. now may be nil, in which
// case time.Now is used.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		entries: make(map[Key]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

func (c *Cache) Get(k Key) (Assessment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[k]
	if !ok || !entry.expiresAt.After(c.now()) {
		c.misses.Add(1)
		return Assessment{}, false
	}
	c.hits.Add(1)
	return entry.value, true
}

// Stats reports cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) Put(k Key, a Assessment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[k] = cacheEntry{value: a, expiresAt: c.now().Add(c.ttl)}
}

// Len reports how many entries the cache holds, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
