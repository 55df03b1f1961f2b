package ratelimit

import (
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, limit int) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := NewRedisLimiter(client, "test", limit, time.Minute)
	require.NoError(t, err)
	fixed := time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }
	return limiter, mr
}

func TestRedisLimiter(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 2)

	assert.True(t, limiter.Allow("user-a"))
	assert.True(t, limiter.Allow("user-a"))
	assert.False(t, limiter.Allow("user-a"))
	assert.True(t, limiter.Allow("user-b"))

	key := limiter.windowKey("user-a", limiter.now())
	assert.True(t, strings.HasPrefix(key, "test:ratelimit:user-a:"))
	count, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "3", count)
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestRedisLimiterNextWindow(t *testing.T) {
	limiter, _ := newRedisLimiter(t, 1)
	now := limiter.now()

	assert.True(t, limiter.Allow("user-a"))
	assert.False(t, limiter.Allow("user-a"))

	limiter.now = func() time.Time { return now.Add(time.Minute) }
	assert.True(t, limiter.Allow("user-a"))
}

func TestRedisLimiterFailsClosed(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 5)
	mr.Close()
	assert.False(t, limiter.Allow("user-a"))
}

func TestNewRedisLimiterValidation(t *testing.T) {
	_, err := NewRedisLimiter(nil, "", 1, time.Second)
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	_, err = NewRedisLimiter(client, "", 0, time.Second)
	assert.Error(t, err)
	_, err = NewRedisLimiter(client, "", 1, 0)
	assert.Error(t, err)
}

func TestLocalLimiter(t *testing.T) {
	limiter := NewLocalLimiter(2, time.Hour, time.Minute)
	defer limiter.Stop()

	assert.True(t, limiter.Allow("user-a"))
	assert.True(t, limiter.Allow("user-a"))
	assert.False(t, limiter.Allow("user-a"))
	assert.True(t, limiter.Allow("user-b"))

	limiter.sweep(time.Now().Add(2 * time.Minute))
	assert.True(t, limiter.Allow("user-a"))
	limiter.Stop()
}

var (
	_ Limiter = (*RedisLimiter)(nil)
	_ Limiter = (*LocalLimiter)(nil)
)
