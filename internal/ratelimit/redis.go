package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const redisTimeout = 2 * time.Second

// RedisLimiter counts requests per key in fixed windows stored in Redis, so
// every server instance shares one quota. Requests are denied when Redis
// cannot be reached.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter creates a limiter allowing limit requests per window
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if limit <= 0 || window < time.Millisecond {
		return nil, fmt.Errorf("invalid rate limit %d per %s", limit, window)
	}
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = "thriftswap"
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix + ":ratelimit",
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}, nil
}

// windowKey names the counter of key for the window containing t
func (l *RedisLimiter) windowKey(key string, t time.Time) string {
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, t.UnixMilli()/l.window.Milliseconds())
}

// Allow increments the key's counter for the current window
func (l *RedisLimiter) Allow(key string) bool {
	if key = strings.TrimSpace(key); key == "" {
		key = "anonymous"
	}
	windowKey := l.windowKey(key, l.now())

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, windowKey)
		pipe.PExpire(ctx, windowKey, l.window)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to check rate limit")
		return false
	}
	return incr.Val() <= l.limit
}
