package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAuthenticateAcceptsProviderToken(t *testing.T) {
	identity := NewIdentityService(testSecret, "", nil)
	token, err := identity.GenerateJWT("user-a", time.Hour)
	require.NoError(t, err)

	userID, err := identity.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-a", userID)
}

func TestAuthenticateUserIDClaimFallback(t *testing.T) {
	identity := NewIdentityService(testSecret, "", nil)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-b",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	userID, err := identity.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-b", userID)
}

func TestAuthenticateRejects(t *testing.T) {
	identity := NewIdentityService(testSecret, "thrift-auth", nil)
	other := NewIdentityService("other-secret", "thrift-auth", nil)
	wrongIssuer := NewIdentityService(testSecret, "someone-else", nil)

	forged, err := other.GenerateJWT("user-a", time.Hour)
	require.NoError(t, err)
	expired, err := identity.GenerateJWT("user-a", -time.Minute)
	require.NoError(t, err)
	foreign, err := wrongIssuer.GenerateJWT("user-a", time.Hour)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "thrift-auth",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "thrift-auth",
		"sub": "user-a",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":      "",
		"garbage":    "not.a.jwt",
		"forged":     forged,
		"expired":    expired,
		"issuer":     foreign,
		"no subject": noSubject,
		"no expiry":  noExpiry,
	} {
		_, err := identity.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthenticated, name)
	}
	assert.ErrorIs(t, identity.SignOut(context.Background(), noExpiry), ErrUnauthenticated)
}

func TestSignOutRevokesTokenInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	revoker, err := NewRedisTokenRevoker(client, "test")
	require.NoError(t, err)
	identity := NewIdentityService(testSecret, "", revoker)

	token, err := identity.GenerateJWT("user-a", time.Hour)
	require.NoError(t, err)
	kept, err := identity.GenerateJWT("user-a", 2*time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, identity.SignOut(ctx, token))

	_, err = identity.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = identity.Authenticate(ctx, kept)
	assert.NoError(t, err)

	key := "test:revoked:" + tokenKey(token)
	assert.True(t, mr.Exists(key))
	ttl := mr.TTL(key)
	assert.True(t, ttl > 0 && ttl <= time.Hour, "ttl %s", ttl)

	mr.FastForward(time.Hour + time.Second)
	assert.False(t, mr.Exists(key))
}

func TestRedisRevokerFailsClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	revoker, err := NewRedisTokenRevoker(client, "")
	require.NoError(t, err)
	identity := NewIdentityService(testSecret, "", revoker)
	token, err := identity.GenerateJWT("user-a", time.Hour)
	require.NoError(t, err)

	mr.Close()
	_, err = identity.Authenticate(context.Background(), token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestNewRedisTokenRevokerRequiresClient(t *testing.T) {
	_, err := NewRedisTokenRevoker(nil, "x")
	assert.Error(t, err)
}

func TestMemoryTokenRevokerExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	revoker := NewMemoryTokenRevoker()
	revoker.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, revoker.Revoke(ctx, "k", time.Minute))
	revoked, err := revoker.IsRevoked(ctx, "k")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = revoker.IsRevoked(ctx, "k")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, revoker.Revoke(ctx, "gone", -time.Second))
	revoked, err = revoker.IsRevoked(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, revoked)
}
