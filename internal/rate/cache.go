package rate

import (
	"fxconvert/internal/domain"
	"sync"
	"time"
)

// DefaultTTL is how long a fetched rate set stays valid.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	rates     domain.Rates
	expiresAt time.Time
}

// Cache holds at most one rate set. Rates and expiry are always replaced together.
type Cache struct {
	mu    sync.RWMutex
	entry *cacheEntry
	now   func() time.Time
}

// Get returns the cached rates while now is strictly before their expiry.
func (c *Cache) Get() (domain.Rates, bool) {
	c.mu.RLock()
	entry := c.entry
	c.mu.RUnlock()

	if entry == nil || !c.now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.rates, true
}

func (c *Cache) Put(rates domain.Rates, ttl time.Duration) {
	entry := &cacheEntry{rates: rates.Clone(), expiresAt: c.now().Add(ttl)}

	c.mu.Lock()
	c.entry = entry
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

func NewCache(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{now: now}
}
