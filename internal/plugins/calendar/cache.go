package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheKeyPrefix namespaces derived results in Redis.
const cacheKeyPrefix = "almanac:"

// ResultCache stores derived results (display bundles, visibility grids)
// keyed by calendar hash. Errors are reported to the caller, which treats
// them as misses; the cache is never required for correctness.
type ResultCache interface {
	// Get decodes the value under key into dst. It reports false on a miss.
	Get(ctx context.Context, key string, dst any) (bool, error)

	// Set stores v under key.
	Set(ctx context.Context, key string, v any) error
}

// cacheKey joins a calendar hash, a result kind and its arguments.
func cacheKey(hash, kind string, args ...any) string {
	parts := make([]string, 0, len(args)+2)
	parts = append(parts, hash, kind)
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return cacheKeyPrefix + strings.Join(parts, ":")
}

// redisCache is the Redis implementation of ResultCache. Values are JSON.
type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache creates a ResultCache backed by rdb. Entries expire after ttl.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) ResultCache {
	return &redisCache{rdb: rdb, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decoding cache %s: %w", key, err)
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache %s: %w", key, err)
	}
	return nil
}

// noopCache never stores anything. It is used when Redis is not configured.
type noopCache struct{}

// NewNoopCache returns a ResultCache that always misses.
func NewNoopCache() ResultCache { return noopCache{} }

func (noopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noopCache) Set(context.Context, string, any) error         { return nil }
