package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker remembers signed-out tokens until they would have expired
type TokenRevoker interface {
	Revoke(ctx context.Context, key string, ttl time.Duration) error
	IsRevoked(ctx context.Context, key string) (bool, error)
}

// RedisTokenRevoker stores revocations in Redis with a TTL
type RedisTokenRevoker struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenRevoker creates a Redis-backed revoker
func NewRedisTokenRevoker(client *redis.Client, prefix string) (*RedisTokenRevoker, error) {
	if client == nil {
		return nil, errors.New("token revoker requires a redis client")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "thriftswap"
	}
	return &RedisTokenRevoker{client: client, prefix: prefix + ":revoked"}, nil
}

// Revoke marks key as revoked for ttl
func (r *RedisTokenRevoker) Revoke(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.prefix+":"+key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether key has been revoked
func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+":"+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// MemoryTokenRevoker keeps revocations in-process
type MemoryTokenRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryTokenRevoker creates an in-process revoker
func NewMemoryTokenRevoker() *MemoryTokenRevoker {
	return &MemoryTokenRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke marks key as revoked for ttl
func (r *MemoryTokenRevoker) Revoke(_ context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for k, exp := range r.revoked {
		if !exp.After(now) {
			delete(r.revoked, k)
		}
	}
	r.revoked[key] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether key has been revoked
func (r *MemoryTokenRevoker) IsRevoked(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.revoked[key]
	return ok && exp.After(r.now()), nil
}
