package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRevocationPrefix namespaces revocation keys in Redis.
const DefaultRevocationPrefix = "dentix:revoked:"

// redisClient is the subset of *redis.Client the store needs.
type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisRevocationStore shares the revocation set between processes. Keys
// expire with the token they revoke.
type RedisRevocationStore struct {
	client redisClient
	prefix string
	now    func() time.Time
}

func NewRedisRevocationStore(client redisClient, prefix string) *RedisRevocationStore {
	if prefix == "" {
		prefix = DefaultRevocationPrefix
	}
	return &RedisRevocationStore{client: client, prefix: prefix, now: time.Now}
}

// NewRedisClient connects to the Redis instance at url and pings it.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisRevocationStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + hex.EncodeToString(sum[:])
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := s.client.Set(ctx, s.key(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}
