package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// InMemoryCache is the process-local Cache used when Redis is not available.
// Values do not survive a restart.
type InMemoryCache struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{data: make(map[string]entry), now: time.Now}
}

// lookup returns the live entry for key, dropping it when expired. c.mu must be held.
func (c *InMemoryCache) lookup(key string) ([]byte, bool) {
	e, ok := c.data[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		delete(c.data, key)
		return nil, false
	}
	return e.value, true
}

func (c *InMemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if val, ok := c.lookup(key); ok {
		return val, nil
	}
	return nil, ErrCacheMiss
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.data[key] = e
	return nil
}

func (c *InMemoryCache) Take(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.lookup(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	delete(c.data, key)
	return val, nil
}

func (c *InMemoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix, wildcard := strings.CutSuffix(pattern, "*")
	for key := range c.data {
		if key == pattern || (wildcard && strings.HasPrefix(key, prefix)) {
			delete(c.data, key)
		}
	}
	return nil
}

func (c *InMemoryCache) Close() error { return nil }
