package catalog

import (
	"sync"
	"time"
)

// Variant distinguishes the two listing flavors held in the cache.
type Variant string

const (
	VariantRaw        Variant = "raw"
	VariantTranslated Variant = "translated"
)

type listingKey struct {
	year    int
	month   time.Month
	variant Variant
}

type listingEntry struct {
	games   []Game
	limit   int // the limit the listing was fetched with
	expires time.Time
}

// Cache holds listings per (year, month, variant) with per-entry TTLs.
// Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[listingKey]listingEntry
}

// NewCache creates an empty listing cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[listingKey]listingEntry)}
}

// Get returns the cached listing for the exact (year, month, variant) key,
// clipped to limit. An entry satisfies the lookup when it was fetched with
// at least this limit or already holds that many games; a listing shorter
// than its fetch limit means upstream was exhausted, not that the entry is
// incomplete.
func (c *Cache) Get(year int, month time.Month, variant Variant, limit int) ([]Game, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[listingKey{year, month, variant}]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	if entry.limit < limit && len(entry.games) < limit {
		return nil, false
	}
	if len(entry.games) > limit {
		return entry.games[:limit], true
	}
	return entry.games, true
}

// Put stores a listing under (year, month, variant) with the limit it was
// fetched with and the given TTL.
func (c *Cache) Put(year int, month time.Month, variant Variant, games []Game, limit int, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[listingKey{year, month, variant}] = listingEntry{
		games:   games,
		limit:   limit,
		expires: time.Now().Add(ttl),
	}
}

// Invalidate drops both variants for a month.
func (c *Cache) Invalidate(year int, month time.Month) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, listingKey{year, month, VariantRaw})
	delete(c.entries, listingKey{year, month, VariantTranslated})
}
