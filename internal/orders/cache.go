package orders

import (
	"sync"

	"PerpMirror/internal/market"
)

// Entry is the most recently observed (slot, state) pair for one account.
type Entry struct {
	Slot  uint64
	State *market.UserAccount
}

// Cache maps account keys to cached entries. It is owned by one Subscriber:
// only the refresh path mutates it, everything else reads. The lock exists
// because push updates and full scans can land on different goroutines.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Get returns the entry for key, if cached.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Set inserts or overwrites the entry for key. Slot ordering is enforced by
// the coordinator, not here.
func (c *Cache) Set(key string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}

// Delete evicts key. Deleting an absent key is a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of cached accounts.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns a snapshot of all cached account keys.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// ForEach calls fn for every cached entry while holding the read lock.
// fn must not mutate the cache or retain the entry's state across calls.
func (c *Cache) ForEach(fn func(key string, e Entry)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for k, e := range c.entries {
		fn(k, e)
	}
}
