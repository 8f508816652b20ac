package utils

import (
	"sync"
	"time"
)

type cacheItem[V any] struct {
	value      V
	expiration time.Time
}

// Cache is an in-memory key/value store with per-item expiration. A
// janitor goroutine evicts expired items until Close is called.
type Cache[V any] struct {
	items map[string]*cacheItem[V]
	mu    sync.RWMutex
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// NewCache creates a cache swept every interval
func NewCache[V any](interval time.Duration) *Cache[V] {
	c := &Cache[V]{
		items: make(map[string]*cacheItem[V]),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go c.cleanupLoop(interval)
	return c
}

// Set stores a value with the given time to live
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem[V]{
		value:      value,
		expiration: c.now().Add(ttl),
	}
}

// Get retrieves a value. Expired entries are reported as missing.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !exists {
		return zero, false
	}
	if c.now().After(item.expiration) {
		c.Delete(key)
		return zero, false
	}
	return item.value, true
}

// GetOrCreate returns the live value for key, storing the result of create
// when there is none. The TTL is refreshed on every call.
func (c *Cache[V]) GetOrCreate(key string, ttl time.Duration, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	item, exists := c.items[key]
	if !exists || now.After(item.expiration) {
		item = &cacheItem[V]{value: create()}
		c.items[key] = item
	}
	item.expiration = now.Add(ttl)
	return item.value
}

// Delete removes an item from cache
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Size returns the number of items in cache, expired ones included until
// the next sweep
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the janitor goroutine
func (c *Cache[V]) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache[V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiration) {
			delete(c.items, key)
		}
	}
}
