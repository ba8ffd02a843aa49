package cache_test

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestbook/internal/cache"
	"guestbook/internal/model"
)

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	// Use DB 1 for testing to avoid conflicts with dev data
	opts.DB = 1
	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}
	client.Del(context.Background(), cache.PopularCacheKey, cache.PopularGenerationKey)
	t.Cleanup(func() {
		client.Del(context.Background(), cache.PopularCacheKey, cache.PopularGenerationKey)
		client.Close()
	})
	return client
}

func TestPopularCache_SetGetInvalidate(t *testing.T) {
	client := setupTestRedis(t)
	c := cache.NewPopularCache(client)
	ctx := context.Background()

	_, gen, found, err := c.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, found)

	items := []model.Message{
		{ID: "m1", Username: "alice", Content: "hi", Likes: 4, Replies: []model.Reply{}},
		{ID: "m2", Username: "bob", Content: "yo", Likes: 2, Replies: []model.Reply{}},
	}
	require.NoError(t, c.Set(ctx, 5, gen, items))

	got, _, found, err := c.Get(ctx, 5)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, 4, got[0].Likes)

	// Other limits are separate entries
	_, _, found, err = c.Get(ctx, 10)
	require.NoError(t, err)
	assert.False(t, found)

	ttl, err := client.TTL(ctx, cache.PopularCacheKey).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= cache.PopularCacheTTL)

	require.NoError(t, c.Invalidate(ctx))
	_, _, found, err = c.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPopularCache_SetAfterInvalidateIsDropped(t *testing.T) {
	client := setupTestRedis(t)
	c := cache.NewPopularCache(client)
	ctx := context.Background()

	_, gen, found, err := c.Get(ctx, 5)
	require.NoError(t, err)
	require.False(t, found)

	// A like lands while the list is being computed
	require.NoError(t, c.Invalidate(ctx))
	stale := []model.Message{{ID: "m1", Likes: 1, Replies: []model.Reply{}}}
	require.NoError(t, c.Set(ctx, 5, gen, stale))

	_, newGen, found, err := c.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, gen+1, newGen)

	require.NoError(t, c.Set(ctx, 5, newGen, stale))
	_, _, found, err = c.Get(ctx, 5)
	require.NoError(t, err)
	assert.True(t, found)
}
