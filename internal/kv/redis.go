package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis server.
type RedisStore struct {
	client *redis.Client
}

// Compile-time check: *RedisStore must satisfy Store.
var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close closes the underlying connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Get returns the value at key, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv get %q: %w", key, err)
	}

	return val, nil
}

// Set stores value at key with an optional expiry.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}

	return nil
}

// SetNX stores value only if key is absent.
func (s *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("kv setnx %q: %w", key, err)
	}

	return ok, nil
}

// Delete removes keys.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("kv del: %w", err)
	}

	return nil
}

// Exists reports whether key is present.
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("kv exists %q: %w", key, err)
	}

	return n > 0, nil
}

// ListAppend appends values to the list at key.
func (s *RedisStore) ListAppend(ctx context.Context, key string, values ...string) error {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	if err := s.client.RPush(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("kv rpush %q: %w", key, err)
	}

	return nil
}

// ListRange returns list elements in [start, stop].
func (s *RedisStore) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vals, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("kv lrange %q: %w", key, err)
	}

	return vals, nil
}

// ListLen returns the length of the list at key.
func (s *RedisStore) ListLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("kv llen %q: %w", key, err)
	}

	return n, nil
}

// ListRemove removes all occurrences of value from the list at key.
func (s *RedisStore) ListRemove(ctx context.Context, key, value string) error {
	if err := s.client.LRem(ctx, key, 0, value).Err(); err != nil {
		return fmt.Errorf("kv lrem %q: %w", key, err)
	}

	return nil
}
