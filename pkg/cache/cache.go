package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLSearch   = 30 * time.Second // search result pages (freshness over hit rate)
	TTLFeatured = 1 * time.Minute  // featured listing feed
	TTLDefault  = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixSearch   = "search:"
	PrefixFeatured = "featured:"

	searchVersionKey = "search:ver"
)

// Service Redis cache service interface. A nil-client service degrades
// to a no-op so the API keeps working without Redis.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Search page cache. Keys are versioned: InvalidateSearch bumps the
	// version so every cached page goes stale at once.
	GetSearch(ctx context.Context, key string, dest interface{}) error
	SetSearch(ctx context.Context, key string, value interface{}) error
	InvalidateSearch(ctx context.Context) error

	IsAvailable() bool
}

// redisCache Redis-backed cache implementation
type redisCache struct {
	client *redis.Client
}

// NewService creates a new cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether Redis is wired in
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Get reads a value from the cache
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return redis.Nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set stores a value in the cache
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys from the cache
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// GetSearch reads a cached search page
func (c *redisCache) GetSearch(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return redis.Nil
	}
	return c.Get(ctx, c.searchKey(ctx, key), dest)
}

// SetSearch caches a search page
func (c *redisCache) SetSearch(ctx context.Context, key string, value interface{}) error {
	if c.client == nil {
		return nil
	}
	return c.Set(ctx, c.searchKey(ctx, key), value, TTLSearch)
}

// InvalidateSearch invalidates all cached search pages
func (c *redisCache) InvalidateSearch(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, searchVersionKey).Err()
}

func (c *redisCache) searchKey(ctx context.Context, key string) string {
	ver, err := c.client.Get(ctx, searchVersionKey).Int64()
	if err != nil {
		ver = 0
	}
	return fmt.Sprintf("%s%d:%s", PrefixSearch, ver, key)
}
