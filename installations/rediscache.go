package installations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vigilo-home/vigilo/session"
)

const redisKeyPrefix = "vigilo:installation:"

// RedisCache shares installation service details across processes through
// redis, with the TTL enforced server-side.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a redis-backed cache from a redis URL.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: redis.NewClient(opts), ttl: ttl}, nil
}

// NewRedisCacheWithClient wraps an existing client, mainly for tests.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func redisKey(installationID string) string {
	return redisKeyPrefix + installationID
}

// Get returns the cached services, treating an expired capability token the
// same as an absent key.
func (c *RedisCache) Get(ctx context.Context, installationID string) (*Services, error) {
	raw, err := c.client.Get(ctx, redisKey(installationID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var svc Services
	if err := json.Unmarshal(raw, &svc); err != nil {
		return nil, fmt.Errorf("corrupt cache entry: %w", err)
	}

	if session.TokenExpired(svc.Capabilities, session.DefaultLeeway) {
		c.client.Del(ctx, redisKey(installationID))
		return nil, ErrCacheMiss
	}
	return &svc, nil
}

// Put stores services under the configured TTL.
func (c *RedisCache) Put(ctx context.Context, installationID string, svc *Services) error {
	raw, err := json.Marshal(svc)
	if err != nil {
		return fmt.Errorf("failed to encode services: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(installationID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate drops the entry for an installation.
func (c *RedisCache) Invalidate(ctx context.Context, installationID string) error {
	if err := c.client.Del(ctx, redisKey(installationID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// InvalidateAll drops every cached installation entry.
func (c *RedisCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
