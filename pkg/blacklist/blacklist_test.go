package blacklist

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRevokeToken(t *testing.T) {
	mr, client := setupRedis(t)
	bl := NewTokenBlacklist(client)
	ctx := context.Background()

	revoked, err := bl.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.RevokeToken(ctx, "jti-1", time.Now().Add(time.Minute)))

	revoked, err = bl.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = bl.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeTokenSkipsExpired(t *testing.T) {
	mr, client := setupRedis(t)
	bl := NewTokenBlacklist(client)

	require.NoError(t, bl.RevokeToken(context.Background(), "old", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists("blacklist:token:old"))
}

func TestRevokeSession(t *testing.T) {
	mr, client := setupRedis(t)
	bl := NewTokenBlacklist(client)
	ctx := context.Background()

	require.NoError(t, bl.RevokeSession(ctx, "sid", 0))
	assert.Equal(t, 24*time.Hour, mr.TTL("blacklist:session:sid"))

	revoked, err := bl.IsSessionRevoked(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsSessionRevoked(ctx, "other")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBlacklistSurfacesRedisErrors(t *testing.T) {
	mr, client := setupRedis(t)
	bl := NewTokenBlacklist(client)
	mr.Close()

	_, err := bl.IsTokenRevoked(context.Background(), "x")
	assert.Error(t, err)
}
