package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TokenDenylist remembers revoked access tokens until they would have expired anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisTokenDenylist implements TokenDenylist with expiring Redis keys.
type RedisTokenDenylist struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisTokenDenylist creates a new Redis-backed token denylist.
func NewRedisTokenDenylist(client *redis.Client, log *zap.Logger) TokenDenylist {
	return &RedisTokenDenylist{client: client, log: log}
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("token:revoked:%s", tokenID)
}

// Revoke stores tokenID for ttl. A non-positive ttl means the token has
// already expired and nothing is stored.
func (d *RedisTokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		d.log.Error("failed to revoke token", zap.String("session_id", tokenID), zap.Error(err))
		return err
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked.
func (d *RedisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
