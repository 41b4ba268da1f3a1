package naming

import "github.com/jellydator/ttlcache/v3"

// Key identifies a memoized conversion: the input name and the identity of
// the prefix set it was converted against.
type Key struct {
	Name   string
	Prefix string
}

// Cache memoizes naming conversions for one compilation pass.
//
// Conversions are pure, so concurrent workers racing on the same key store
// identical values and no coordination beyond the store's own locking is
// needed. Entries never expire; call Reset between passes.
type Cache struct {
	items *ttlcache.Cache[Key, string]
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		items: ttlcache.New(ttlcache.WithDisableTouchOnHit[Key, string]()),
	}
}

// GetOrCompute returns the cached value for key, computing and storing it
// first if needed. Only fully computed values are ever inserted.
func (c *Cache) GetOrCompute(key Key, compute func() string) string {
	if item := c.items.Get(key); item != nil {
		return item.Value()
	}
	value := compute()
	c.items.Set(key, value, ttlcache.NoTTL)
	return value
}

// Len returns the number of memoized entries.
func (c *Cache) Len() int {
	return c.items.Len()
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.items.DeleteAll()
}
