package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// RevokedTokenKeyPrefix is the Redis key prefix for revoked tokens
	RevokedTokenKeyPrefix = "revoked_token:"
)

// RedisRevocationCache keeps revoked tokens in Redis so the hot authentication
// path rarely has to hit PostgreSQL. Entries expire with the token itself.
type RedisRevocationCache struct {
	Client *redis.Client
}

func NewRedisRevocationCache(client *redis.Client) *RedisRevocationCache {
	return &RedisRevocationCache{Client: client}
}

func (c *RedisRevocationCache) MarkRevoked(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.Client.Set(ctx, RevokedTokenKeyPrefix+token, "1", ttl).Err()
}

func (c *RedisRevocationCache) IsRevoked(ctx context.Context, token string) (bool, error) {
	count, err := c.Client.Exists(ctx, RevokedTokenKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
