// Package cache provides an optional Redis-backed cache. The service runs
// fine without Redis: when no address is configured or the server is
// unreachable, every operation degrades to a miss.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis at addr. Returns nil when addr is empty or
// the server does not answer a ping, which callers treat as "cache disabled".
func NewRedisClient(addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil
	}
	return client
}

// Cache wraps a Redis client with JSON serialization. A Cache around a nil
// client is valid and behaves as an always-miss cache.
type Cache struct {
	client *redis.Client
}

// New creates a Cache. client may be nil.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Enabled reports whether a Redis backend is wired.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON loads the value at key into dest. Returns false on a miss, a
// disabled cache, or any Redis or decode error; cache failures never surface
// to the caller.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// SetJSON stores value at key with a TTL. Errors are swallowed; the source of
// truth is always the database.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, data, ttl)
}

// Delete removes keys, typically to invalidate after a write.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}
