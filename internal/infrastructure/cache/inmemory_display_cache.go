package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryProductDisplayCache is a process-local ProductDisplayCache.
// It is the fallback when Redis is not configured and is sufficient for
// single-instance deployments.
type InMemoryProductDisplayCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryProductDisplayCache creates an in-memory cache with the given TTL
func NewInMemoryProductDisplayCache(ttl time.Duration) *InMemoryProductDisplayCache {
	return &InMemoryProductDisplayCache{
		entries: make(map[uuid.UUID]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached display info and whether it was present
func (c *InMemoryProductDisplayCache) Get(_ context.Context, productID uuid.UUID) (DisplayInfo, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[productID]
	c.mu.RUnlock()

	if !ok {
		return DisplayInfo{}, false, nil
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, productID)
		c.mu.Unlock()
		return DisplayInfo{}, false, nil
	}
	return e.info, true, nil
}

// Set stores display info with the cache's TTL
func (c *InMemoryProductDisplayCache) Set(_ context.Context, productID uuid.UUID, info DisplayInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[productID] = entry{
		info:      info,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

// Invalidate removes a product from the cache
func (c *InMemoryProductDisplayCache) Invalidate(_ context.Context, productID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, productID)
	return nil
}

var _ ProductDisplayCache = (*InMemoryProductDisplayCache)(nil)
