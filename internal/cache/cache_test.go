package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	_, found := c.Get(ctx, "missing")
	assert.False(t, found)

	c.Set(ctx, "key", []byte("value"), time.Minute)
	v, found := c.Get(ctx, "key")
	assert.True(t, found)
	assert.Equal(t, []byte("value"), v)
}

func TestShardedMemoryCacheRoundTrip(t *testing.T) {
	c := NewShardedMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		key := string(rune('a' + i%26))
		c.Set(ctx, key, []byte(key+key), time.Minute)
	}
	v, found := c.Get(ctx, "a")
	assert.True(t, found)
	assert.Equal(t, []byte("aa"), v)

	_, found = c.Get(ctx, "not-set")
	assert.False(t, found)
}
