package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the fast in-process layer in front of the disk cache,
// backed by go-cache with TTL expiry.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a memory cache. Expired entries are swept at half
// the default TTL, at least once a minute; lookups check expiry regardless.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	sweep := defaultTTL / 2
	if sweep < time.Minute {
		sweep = time.Minute
	}
	return &MemoryCache{store: gocache.New(defaultTTL, sweep)}
}

// Get retrieves the payload for key
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	payload, ok := val.([]byte)
	if !ok {
		return nil, false
	}
	return payload, true
}

// Set stores the payload under key. A zero or negative TTL uses the default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, value, ttl)
	return nil
}

// Delete removes the entry for key
func (c *MemoryCache) Delete(key string) error {
	c.store.Delete(key)
	return nil
}

// Clear drops every entry
func (c *MemoryCache) Clear() error {
	c.store.Flush()
	return nil
}
