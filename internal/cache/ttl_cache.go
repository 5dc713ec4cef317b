package cache

import (
	"log/slog"
	"sync"
	"time"
)

// entry is a cached value with its expiration time
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// EvictFunc is called, outside the cache lock, for every entry that expires or is deleted
type EvictFunc[V any] func(key string, value V)

// Stats is a point-in-time view of the cache
type Stats struct {
	TotalEntries   int    `json:"total_entries"`
	ActiveEntries  int    `json:"active_entries"`
	ExpiredEntries int    `json:"expired_entries"`
	TTL            string `json:"ttl_duration"`
}

// TTLCache is a thread-safe cache whose entries expire after a period of inactivity.
// Every successful Get extends the entry's lifetime by the TTL.
type TTLCache[V any] struct {
	items         map[string]*entry[V]
	mutex         sync.Mutex
	ttl           time.Duration
	onEvict       EvictFunc[V]
	now           func() time.Time
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

// NewTTLCache creates a new TTL cache with specified TTL and cleanup interval
func NewTTLCache[V any](ttl, cleanupInterval time.Duration, onEvict EvictFunc[V]) *TTLCache[V] {
	c := &TTLCache[V]{
		items:       make(map[string]*entry[V]),
		ttl:         ttl,
		onEvict:     onEvict,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	c.cleanupTicker = time.NewTicker(cleanupInterval)
	go c.cleanupExpiredEntries()

	slog.Info("TTL cache initialized",
		"ttl", ttl.String(),
		"cleanup_interval", cleanupInterval.String())

	return c
}

// Set stores a value, replacing (and evicting) any previous value for key
func (c *TTLCache[V]) Set(key string, value V) {
	c.mutex.Lock()
	old, replaced := c.items[key]
	expiresAt := c.now().Add(c.ttl)
	c.items[key] = &entry[V]{value: value, expiresAt: expiresAt}
	c.mutex.Unlock()

	slog.Debug("Cache entry set",
		"key", key,
		"expires_at", expiresAt.Format(time.RFC3339))

	if replaced {
		c.evict(key, old.value)
	}
}

// Get returns the value for key if it has not expired and extends its lifetime
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V
	c.mutex.Lock()
	e, exists := c.items[key]
	if !exists {
		c.mutex.Unlock()
		return zero, false
	}
	now := c.now()
	if now.After(e.expiresAt) {
		delete(c.items, key)
		c.mutex.Unlock()
		slog.Debug("Cache entry expired", "key", key)
		c.evict(key, e.value)
		return zero, false
	}
	e.expiresAt = now.Add(c.ttl)
	value := e.value
	c.mutex.Unlock()

	slog.Debug("Cache hit", "key", key)
	return value, true
}

// GetOrCreate returns the live value for key or stores the result of create.
// create runs without the cache lock held; if it fails nothing is stored.
func (c *TTLCache[V]) GetOrCreate(key string, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mutex.Lock()
	if e, exists := c.items[key]; exists && !c.now().After(e.expiresAt) {
		// another request created it first
		winner := e.value
		c.mutex.Unlock()
		c.evict(key, v)
		return winner, nil
	}
	c.items[key] = &entry[V]{value: v, expiresAt: c.now().Add(c.ttl)}
	c.mutex.Unlock()
	return v, nil
}

// Delete removes a specific key from the cache
func (c *TTLCache[V]) Delete(key string) {
	c.mutex.Lock()
	e, exists := c.items[key]
	delete(c.items, key)
	c.mutex.Unlock()

	if exists {
		slog.Debug("Cache entry deleted", "key", key)
		c.evict(key, e.value)
	}
}

// Size returns the current number of items in the cache (including expired ones)
func (c *TTLCache[V]) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// Clear evicts every entry
func (c *TTLCache[V]) Clear() {
	c.mutex.Lock()
	items := c.items
	c.items = make(map[string]*entry[V])
	c.mutex.Unlock()

	for key, e := range items {
		c.evict(key, e.value)
	}
	slog.Info("Cache cleared", "removed_items", len(items))
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (c *TTLCache[V]) Stop() {
	c.stopOnce.Do(func() {
		c.cleanupTicker.Stop()
		close(c.stopCleanup)
		slog.Info("TTL cache stopped")
	})
}

func (c *TTLCache[V]) cleanupExpiredEntries() {
	for {
		select {
		case <-c.cleanupTicker.C:
			c.performCleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

// performCleanup removes expired entries from the cache
func (c *TTLCache[V]) performCleanup() {
	c.mutex.Lock()
	now := c.now()
	expired := make(map[string]V)
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			expired[key] = e.value
			delete(c.items, key)
		}
	}
	remaining := len(c.items)
	c.mutex.Unlock()

	for key, value := range expired {
		c.evict(key, value)
	}
	if len(expired) > 0 {
		slog.Debug("Cache cleanup completed",
			"expired_entries", len(expired),
			"remaining_entries", remaining)
	}
}

func (c *TTLCache[V]) evict(key string, value V) {
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}

// GetStats returns cache statistics
func (c *TTLCache[V]) GetStats() Stats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	stats := Stats{TotalEntries: len(c.items), TTL: c.ttl.String()}
	for _, e := range c.items {
		if now.After(e.expiresAt) {
			stats.ExpiredEntries++
		} else {
			stats.ActiveEntries++
		}
	}
	return stats
}
