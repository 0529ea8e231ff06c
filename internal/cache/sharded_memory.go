package cache

import (
	"context"
	"hash/fnv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const shardCount = 256 // power of 2, matching the teacher's shard sizing

// ShardedMemoryCache fans keys out across shardCount independent
// go-cache instances to reduce lock contention under high fan-out,
// exactly as the teacher's ShardedMemoryCache does, genericized to
// []byte payloads.
type ShardedMemoryCache struct {
	shards []*gocache.Cache
}

func NewShardedMemoryCache(defaultExpiration, cleanupInterval time.Duration) *ShardedMemoryCache {
	c := &ShardedMemoryCache{shards: make([]*gocache.Cache, shardCount)}
	for i := 0; i < shardCount; i++ {
		c.shards[i] = gocache.New(defaultExpiration, cleanupInterval)
	}
	return c
}

func (c *ShardedMemoryCache) getShard(key string) *gocache.Cache {
	hasher := fnv.New64a()
	hasher.Write([]byte(key))
	return c.shards[hasher.Sum64()&(shardCount-1)]
}

func (c *ShardedMemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	shard := c.getShard(key)
	if val, found := shard.Get(key); found {
		if b, ok := val.([]byte); ok {
			return b, true
		}
	}
	return nil, false
}

func (c *ShardedMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.getShard(key).Set(key, value, ttl)
}

func (c *ShardedMemoryCache) Close() error { return nil }
