package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// RistrettoIdentityCache maps already verified bearer tokens to the identity they carry.
type RistrettoIdentityCache struct {
	cache *ristretto.Cache
}

func NewIdentityCache(maxItems int64) (*RistrettoIdentityCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create identity cache failed: %w", err)
	}
	return &RistrettoIdentityCache{cache: c}, nil
}

func (c *RistrettoIdentityCache) Get(token string) (string, bool) {
	if v, ok := c.cache.Get(token); ok {
		identity, ok := v.(string)
		return identity, ok
	}
	return "", false
}

// Set drops entries with a non-positive ttl instead of keeping them forever.
func (c *RistrettoIdentityCache) Set(token, identity string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.cache.SetWithTTL(token, identity, 1, ttl)
}

func (c *RistrettoIdentityCache) Close() { c.cache.Close() }
