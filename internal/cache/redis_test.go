package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisCache 基于 miniredis 创建 RedisCache
func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client, "tang:cache:")
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCacheSetGet(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "role:1", []string{"admin"}, 0))

	raw, ok, err := c.Get(ctx, "role:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["admin"]`, string(raw))

	exists, err := c.Exists(ctx, "role:1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRedisCacheKeysArePrefixed(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	assert.True(t, mr.Exists("tang:cache:k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedisCacheMiss(t *testing.T) {
	c, _ := newTestRedisCache(t)

	_, ok, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheTTL(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", "v", time.Minute))

	// miniredis 手动快进时钟
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheRemove(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Remove(ctx, "k"))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheClearScopedToPrefix(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))
	// 前缀之外的键模拟同库其它应用
	require.NoError(t, mr.Set("other-app:key", "untouched"))

	require.NoError(t, c.Clear(ctx))

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	// Clear 不得波及前缀之外的键
	assert.True(t, mr.Exists("other-app:key"))
}

func TestRedisCacheClearManyKeys(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	// 超过单批删除阈值，覆盖分批路径
	for i := 0; i < 250; i++ {
		require.NoError(t, c.Set(ctx, "bulk:"+strconv.Itoa(i), i, 0))
	}
	require.NoError(t, c.Clear(ctx))

	exists, err := c.Exists(ctx, "bulk:0")
	require.NoError(t, err)
	assert.False(t, exists)
}
