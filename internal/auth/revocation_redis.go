package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

const revokedTokenKeyPrefix = "revoked:jti:"

// RedisRevocationList shares revoked token IDs across instances. The
// key expiry mirrors the token's own expiry so the list never grows
// past the set of live tokens.
type RedisRevocationList struct {
	client *goredis.Client
}

func NewRedisRevocationList(client *goredis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if ttl <= 0 {
		return fmt.Errorf("revocation ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	// Key existence is the marker; the value is irrelevant.
	return l.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

func (l *RedisRevocationList) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := l.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
