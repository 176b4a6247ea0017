package auth

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces session keys in a shared redis.
const DefaultRedisPrefix = "gsms:session:"

// RedisStorage implements Storage on top of redis, so several gsms
// processes on one workstation or CI runner can share a login.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStorage creates a storage using client with keys under prefix.
// An empty prefix selects DefaultRedisPrefix.
func NewRedisStorage(client redis.UniversalClient, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStorage{client: client, prefix: prefix}
}

// NewRedisClient builds a client for addrs; more than one address selects a
// cluster client.
func NewRedisClient(addrs []string, password string, db int) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addrs,
		Password: password,
		DB:       db,
	})
}

// Get returns the value stored under key.
func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, WrapError(ErrStorageFailed, "redis get failed", err, Fields{
			"key": r.prefix + key,
		})
	}
	return value, true, nil
}

// Set stores value under key without expiry; token expiry is enforced by
// the session on restore.
func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return NewError(ErrStorageFailed, "key cannot be empty", nil)
	}
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return WrapError(ErrStorageFailed, "redis set failed", err, Fields{
			"key": r.prefix + key,
		})
	}
	return nil
}

// Delete removes key.
func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return WrapError(ErrStorageFailed, "redis delete failed", err, Fields{
			"key": r.prefix + key,
		})
	}
	return nil
}

// Close releases the redis connection pool.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
