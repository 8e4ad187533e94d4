package cache

import (
	"sync"
	"time"
)

// Entry is a cached value with its expiry.
type Entry struct {
	Value     interface{}
	ExpiresAt time.Time
}

// Store is the backing storage for a Cache. The default is an in-process map;
// a multi-instance deployment can plug in an external key-value store.
type Store interface {
	Get(key string) (Entry, bool)
	Set(key string, e Entry)
	Delete(key string)
	Keys() []string
}

// MemoryStore is a mutex-guarded map. Unlike the single-threaded runtimes this
// pattern is usually lifted from, Go handlers run concurrently, so the lock is
// required. Two requests can still race past a miss and fetch upstream twice;
// that duplicates work but never corrupts the cache.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) Get(key string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok
}

func (m *MemoryStore) Set(key string, e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

// Cache is a TTL cache handed to each service by the caller. It is best-effort
// only: entries vanish on restart and are not shared across instances.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func New(store Store, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl, now: time.Now}
}

// NewWithClock injects a clock, used by tests to step past the TTL.
func NewWithClock(store Store, ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{store: store, ttl: ttl, now: now}
}

func (c *Cache) Get(key string) (interface{}, bool) {
	e, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(e.ExpiresAt) {
		c.store.Delete(key)
		return nil, false
	}
	return e.Value, true
}

func (c *Cache) Set(key string, v interface{}) {
	c.store.Set(key, Entry{Value: v, ExpiresAt: c.now().Add(c.ttl)})
}

// Sweep drops expired entries and reports how many were removed.
func (c *Cache) Sweep() int {
	removed := 0
	for _, k := range c.store.Keys() {
		if e, ok := c.store.Get(k); ok && c.now().After(e.ExpiresAt) {
			c.store.Delete(k)
			removed++
		}
	}
	return removed
}
