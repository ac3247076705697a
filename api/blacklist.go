package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "token:blacklist:"

// RedisBlacklist stores revoked refresh-token ids in Redis so every instance
// rejects them. Entries expire together with the token they revoke.
type RedisBlacklist struct {
	client *redis.Client
}

// NewRedisBlacklist creates a blacklist backed by the provided client.
func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

// Add records the jti until the token's own expiry. A non-positive TTL still
// writes a short-lived entry so an almost-expired token cannot be replayed.
func (b *RedisBlacklist) Add(ctx context.Context, jti string, ttlSeconds int64) error {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	return b.client.Set(ctx, blacklistKeyPrefix+jti, 1, ttl).Err()
}

// Contains reports whether the jti has been revoked.
func (b *RedisBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
