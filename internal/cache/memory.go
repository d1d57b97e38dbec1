package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryProvider is an in-process TTL cache used to bound telemetry bus load.
// Expired entries are dropped lazily on read and swept when the map grows.
type MemoryProvider struct {
	mu   sync.RWMutex
	data map[string]memoryItem
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// sweepThreshold is the entry count above which Set triggers an expiry sweep.
const sweepThreshold = 256

// NewMemoryProvider creates an empty in-memory cache.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{data: make(map[string]memoryItem)}
}

// Get retrieves a cached item if present and not expired.
func (c *MemoryProvider) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	it, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !it.expiresAt.IsZero() && time.Now().After(it.expiresAt) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return it.value, nil
}

// Set stores a value with an optional TTL; a zero TTL never expires.
func (c *MemoryProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = memoryItem{value: value, expiresAt: expires}
	if len(c.data) > sweepThreshold {
		now := time.Now()
		for k, v := range c.data {
			if !v.expiresAt.IsZero() && now.After(v.expiresAt) {
				delete(c.data, k)
			}
		}
	}
	return nil
}

// Del removes a key.
func (c *MemoryProvider) Del(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

// Close releases the map.
func (c *MemoryProvider) Close() error {
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
	return nil
}
