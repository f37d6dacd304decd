package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/backend/internal/social"
)

func TestTrendingKey(t *testing.T) {
	assert.Equal(t, "chirp:trending:1d:10", trendingKey("1d", 10))
	assert.NotEqual(t, trendingKey("1d", 10), trendingKey("1w", 10))
	assert.NotEqual(t, trendingKey("1d", 10), trendingKey("1d", 5))
}

// Requires a running Redis; set REDIS_ADDR to run
func TestTrendingCache_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := Dial(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer client.Close()

	cache := NewTrendingCache(client, time.Minute)
	window := "test-" + time.Now().Format("150405.000")
	defer client.Del(ctx, trendingKey(window, 3))

	_, ok, err := cache.Get(ctx, window, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	tags := []social.TagCount{{Name: "go", Count: 3}, {Name: "neo4j", Count: 1}}
	require.NoError(t, cache.Set(ctx, window, 3, tags))

	got, ok, err := cache.Get(ctx, window, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, tags, got)

	require.NoError(t, cache.Invalidate(ctx))
	_, ok, err = cache.Get(ctx, window, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}
