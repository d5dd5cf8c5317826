package cache

import (
	"context"
	"time"
)

// Cache defines the unified interface for cache operations.
// This abstraction allows switching between cache implementations
// (Redis, local memory) without changing business logic.
type Cache interface {
	// Get retrieves the value for the given key.
	// Returns an empty string (and no error) when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a key-value pair with optional TTL.
	// If ttl is 0, the key will not expire.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// SetNX sets the value only if the key does not exist (atomic operation).
	// Returns true if the key was set, false if it already existed.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// Del deletes one or more keys
	Del(ctx context.Context, keys ...string) error

	// Exists checks if one or more keys exist.
	// Returns the number of keys that exist.
	Exists(ctx context.Context, keys ...string) (int64, error)

	// Expire sets a timeout on a key
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Incr increments the integer value of a key by 1
	Incr(ctx context.Context, key string) (int64, error)

	// Ping verifies the cache connection is alive
	Ping(ctx context.Context) error

	// Close closes the cache connection
	Close() error
}

// NullCacheValue is a sentinel value to represent null/empty data in cache.
// This prevents cache penetration by caching the absence of data.
const NullCacheValue = "$NULL$"

// GetWithCached implements the cache-aside pattern with null value caching.
// It tries the cache first; on miss it calls fn and stores the result. Empty
// results are cached with emptyTTL so absent records do not hammer the source.
func GetWithCached[T any](
	ctx context.Context,
	cache Cache,
	key string,
	ttl time.Duration,
	emptyTTL time.Duration,
	isEmpty func(T) bool,
	marshal func(T) string,
	unmarshal func(string) (T, error),
	fn func(context.Context) (T, error),
) (T, error) {
	var zero T

	if cached, err := cache.Get(ctx, key); err == nil && cached != "" {
		if cached == NullCacheValue {
			return zero, nil
		}
		if result, err := unmarshal(cached); err == nil {
			return result, nil
		}
	}

	data, err := fn(ctx)
	if err != nil {
		return zero, err
	}

	if isEmpty(data) {
		_ = cache.Set(ctx, key, NullCacheValue, emptyTTL)
		return zero, nil
	}

	_ = cache.Set(ctx, key, marshal(data), ttl)
	return data, nil
}

// UpdateCached runs an update and invalidates the cache key on success.
func UpdateCached(
	ctx context.Context,
	cache Cache,
	key string,
	fn func(context.Context) error,
) error {
	if err := fn(ctx); err != nil {
		return err
	}
	_ = cache.Del(ctx, key)
	return nil
}
