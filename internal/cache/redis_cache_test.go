package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

func newTestCache(t *testing.T) (CacheService, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, utils.NewDevelopmentLogger()), server
}

type cachedQuiz struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func TestCache_SetAndGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "quiz:1", cachedQuiz{ID: "quiz-1", Count: 5}, time.Minute))

	var got cachedQuiz
	require.NoError(t, cache.Get(ctx, "quiz:1", &got))
	assert.Equal(t, "quiz-1", got.ID)
	assert.Equal(t, 5, got.Count)
}

func TestCache_MissReturnsSentinel(t *testing.T) {
	cache, _ := newTestCache(t)

	var got cachedQuiz
	err := cache.Get(context.Background(), "absent", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_TTLExpiry(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "quiz:1", cachedQuiz{ID: "quiz-1"}, time.Minute))
	server.FastForward(2 * time.Minute)

	var got cachedQuiz
	assert.ErrorIs(t, cache.Get(ctx, "quiz:1", &got), ErrCacheMiss)
}

func TestCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "quiz:1", cachedQuiz{ID: "quiz-1"}, time.Minute))
	require.NoError(t, cache.Delete(ctx, "quiz:1"))

	var got cachedQuiz
	assert.ErrorIs(t, cache.Get(ctx, "quiz:1", &got), ErrCacheMiss)
}

func TestCache_DeletePattern(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "hints:q1", []string{"a"}, time.Minute))
	require.NoError(t, cache.Set(ctx, "hints:q2", []string{"b"}, time.Minute))
	require.NoError(t, cache.Set(ctx, "quiz:1", cachedQuiz{ID: "quiz-1"}, time.Minute))

	require.NoError(t, cache.DeletePattern(ctx, "hints:*"))

	var hints []string
	assert.ErrorIs(t, cache.Get(ctx, "hints:q1", &hints), ErrCacheMiss)
	assert.ErrorIs(t, cache.Get(ctx, "hints:q2", &hints), ErrCacheMiss)

	var quiz cachedQuiz
	assert.NoError(t, cache.Get(ctx, "quiz:1", &quiz))
}
