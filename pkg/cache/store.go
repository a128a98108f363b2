package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in the store
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is the shared key/value service behind the cache-aside layer.
type Store interface {
	// Get returns the stored JSON value, or ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes entry.Value under entry.Key for entry.TTL.
	Set(ctx context.Context, entry Entry) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// StoreError reports that the store itself could not be reached or failed.
type StoreError struct {
	Op  string
	Key string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("cache store %s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// RedisStore implements Store on a Redis backend.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a new store with Redis backend.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
	}
}

// Get retrieves the value stored under key.
// Returns ErrCacheMiss if the key doesn't exist or has expired.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, &StoreError{Op: "get", Key: key, Err: err}
	}
	return data, nil
}

// Set stores an entry. Redis removes it once the TTL elapses.
func (s *RedisStore) Set(ctx context.Context, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	if err := s.redis.Set(ctx, entry.Key, entry.Value, entry.TTL).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return &StoreError{Op: "set", Key: entry.Key, Err: err}
	}

	CacheStoredBytes.Add(float64(len(entry.Value)))
	return nil
}

// Delete removes a cache entry.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Ping checks that Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return &StoreError{Op: "ping", Err: err}
	}
	return nil
}
