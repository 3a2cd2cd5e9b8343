package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
)

var _ core.CacheRepository = (*RedisCacheRepo)(nil)

// RedisCacheRepo implements core.CacheRepository on Redis.
type RedisCacheRepo struct {
	client redis.UniversalClient
	prefix string
}

// RedisCacheRepoOptions bundles the inputs of NewRedisCacheRepo.
type RedisCacheRepoOptions struct {
	Client redis.UniversalClient
	// Prefix namespaces every key, e.g. "dev:" to share one Redis between environments.
	Prefix string
}

// NewRedisCacheRepo creates a new RedisCacheRepo.
func NewRedisCacheRepo(opts RedisCacheRepoOptions) *RedisCacheRepo {
	return &RedisCacheRepo{client: opts.Client, prefix: opts.Prefix}
}

func (r *RedisCacheRepo) key(k string) string { return r.prefix + k }

// Set stores value under key. A zero TTL keeps the key until deleted.
func (r *RedisCacheRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyCacheKey
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get returns nil, nil for a missing key.
func (r *RedisCacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyCacheKey
	}

	result, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return result, nil
}

// Delete removes key and reports whether it existed.
func (r *RedisCacheRepo) Delete(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyCacheKey
	}

	result, err := r.client.Del(ctx, r.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return result > 0, nil
}

// Health pings Redis.
func (r *RedisCacheRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
