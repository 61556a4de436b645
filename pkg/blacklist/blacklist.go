package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist records signed-out sessions and revoked access tokens in
// Redis. Entries expire together with the tokens they shadow.
type TokenBlacklist struct {
	redis *redis.Client
}

func NewTokenBlacklist(redisClient *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{redis: redisClient}
}

func tokenKey(tokenID string) string {
	return fmt.Sprintf("blacklist:token:%s", tokenID)
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("blacklist:session:%s", sessionID)
}

// RevokeToken blacklists a token ID until expiresAt. Already expired tokens
// are ignored.
func (b *TokenBlacklist) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := b.redis.Set(ctx, tokenKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (b *TokenBlacklist) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.redis.Exists(ctx, tokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

// RevokeSession invalidates every token issued for the session.
func (b *TokenBlacklist) RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	if err := b.redis.Set(ctx, sessionKey(sessionID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (b *TokenBlacklist) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	_, err := b.redis.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check session blacklist: %w", err)
	}
	return true, nil
}
