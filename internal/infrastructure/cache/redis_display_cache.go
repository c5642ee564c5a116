package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const displayKeyPrefix = "product:display:"

// RedisProductDisplayCache implements ProductDisplayCache on Redis.
// Suitable for deployments where multiple instances share the cache.
type RedisProductDisplayCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProductDisplayCache creates a Redis-backed cache and verifies the
// connection.
func NewRedisProductDisplayCache(addr, password string, db int, ttl time.Duration) (*RedisProductDisplayCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisProductDisplayCache{client: client, ttl: ttl}, nil
}

// NewRedisProductDisplayCacheWithClient creates a cache sharing an existing
// client. Useful for tests.
func NewRedisProductDisplayCacheWithClient(client *redis.Client, ttl time.Duration) *RedisProductDisplayCache {
	return &RedisProductDisplayCache{client: client, ttl: ttl}
}

// Get returns the cached display info and whether it was present
func (c *RedisProductDisplayCache) Get(ctx context.Context, productID uuid.UUID) (DisplayInfo, bool, error) {
	payload, err := c.client.Get(ctx, displayKeyPrefix+productID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return DisplayInfo{}, false, nil
		}
		return DisplayInfo{}, false, fmt.Errorf("failed to read display cache: %w", err)
	}

	var info DisplayInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		// A corrupt entry behaves like a miss; the read-through repopulates it
		return DisplayInfo{}, false, nil
	}
	return info, true, nil
}

// Set stores display info with the cache's TTL
func (c *RedisProductDisplayCache) Set(ctx context.Context, productID uuid.UUID, info DisplayInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal display info: %w", err)
	}
	if err := c.client.Set(ctx, displayKeyPrefix+productID.String(), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write display cache: %w", err)
	}
	return nil
}

// Invalidate removes a product from the cache
func (c *RedisProductDisplayCache) Invalidate(ctx context.Context, productID uuid.UUID) error {
	if err := c.client.Del(ctx, displayKeyPrefix+productID.String()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate display cache: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisProductDisplayCache) Close() error {
	return c.client.Close()
}

var _ ProductDisplayCache = (*RedisProductDisplayCache)(nil)
