package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache is a Redis-backed cache, matching the teacher's RedisCache
// wiring (pool sizing, pipelined MSet) but genericized to []byte payloads
// for the extraction-result cache.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache with pooling tuned for high
// fan-out concurrency, matching the teacher's defaults.
func NewRedisCache(addr, password string, db int) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     500,
		MinIdleConns: 50,
	})
	return &RedisCache{client: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("redis GET failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Warn("redis SET failed", "key", key, "error", err)
	}
}

// MSet is a batched/pipelined SET, kept from the teacher. Nothing in this
// repository calls it.
func (c *RedisCache) MSet(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for key, value := range items {
		pipe.Set(ctx, key, value, ttl)
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Warn("redis pipelined MSET failed", "error", err)
	}
	return err
}

func (c *RedisCache) Close() error { return c.client.Close() }
