// Package tokens holds the API-key store: an in-memory cache fed from
// Postgres and refreshed periodically.
package tokens

import "sync"

// Entry describes one API token.
type Entry struct {
	RateLimit int
}

// Cache is the in-memory token set. It is not ready until the first
// successful load, so auth can distinguish "unknown key" from "store not
// loaded yet".
type Cache struct {
	mu sync.RWMutex
	m  map[string]Entry
}

func NewCache() *Cache {
	return &Cache{}
}

// Ready reports whether the cache has been populated at least once.
func (c *Cache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m != nil
}

// Validate checks whether the given token exists in the cached list.
func (c *Cache) Validate(token string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.m[token]
	return ok
}

// RateLimit returns the configured rate limit for the given token. Unknown
// tokens get 0, which disables token-based limiting for them.
func (c *Cache) RateLimit(token string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m[token].RateLimit
}

// Replace swaps the whole token set atomically.
func (c *Cache) Replace(m map[string]Entry) {
	next := make(map[string]Entry, len(m))
	for k, v := range m {
		next[k] = v
	}
	c.mu.Lock()
	c.m = next
	c.mu.Unlock()
}
