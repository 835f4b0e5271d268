package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/spotme/internal/cache"
	"github.com/oggyb/spotme/internal/config"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	c := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestLikeCount_ColdKeyStaysCold(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	require.NoError(t, c.IncrLikeCount(ctx, "u1"))

	_, ok, err := c.GetLikeCount(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLikeCount_WarmKeyIncrements(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, c.UpdateLikeCount(ctx, "u1", 2))
	require.NoError(t, c.IncrLikeCount(ctx, "u1"))

	n, ok, err := c.GetLikeCount(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, cache.LikeCountTTL, mr.TTL(c.KeyForLikeCount("u1")))
}

func TestRevokeSession(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	revoked, err := c.IsSessionRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, c.RevokeSession(ctx, "s1", time.Minute))
	revoked, err = c.IsSessionRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = c.IsSessionRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestPublishSubscribe(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	sub, err := c.Subscribe(ctx, "u1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, c.Publish(ctx, "u1", []byte(`{"type":"ping"}`)))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, `{"type":"ping"}`, msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}
