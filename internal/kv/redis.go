package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values in Redis under a fixed key prefix
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisClient creates a go-redis client from a redis:// URL
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewRedisStore creates a store whose keys are namespaced by prefix
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// WithPrefix returns a store sharing the client with prefix appended to this store's prefix
func (s *RedisStore) WithPrefix(prefix string) *RedisStore {
	return &RedisStore{rdb: s.rdb, prefix: s.prefix + prefix}
}

// Key returns the full Redis key for a store key
func (s *RedisStore) Key(key string) string {
	return s.prefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", s.Key(key), err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.Key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", s.Key(key), err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.Key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", s.Key(key), err)
	}
	return nil
}
