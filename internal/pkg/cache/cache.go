package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kindergarten-canvas/backend/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Cache errors
var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// Config pairs a key prefix with a TTL.
type Config struct {
	TTL    time.Duration
	Prefix string
}

// StatsConfig is used for the dashboard content counts.
var StatsConfig = Config{
	TTL:    5 * time.Minute,
	Prefix: "stats:",
}

// Helper stores JSON values in Redis under a key prefix. A Helper without a
// client is valid: reads miss with ErrCacheNotAvailable and writes are no-ops.
type Helper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewHelper creates a helper for cfg. client may be nil.
func NewHelper(client *redis.Client, cfg Config) *Helper {
	return &Helper{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}
}

// Available reports whether a Redis client is configured.
func (c *Helper) Available() bool {
	return c != nil && c.client != nil
}

// Key returns the prefixed Redis key.
func (c *Helper) Key(key string) string {
	return c.prefix + key
}

// Get retrieves and unmarshals data from cache
func (c *Helper) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Available() {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set marshals value and stores it with the helper's TTL.
func (c *Helper) Set(ctx context.Context, key string, value interface{}) error {
	if !c.Available() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	return c.client.Set(ctx, c.Key(key), data, c.ttl).Err()
}

// Delete removes keys from cache.
func (c *Helper) Delete(ctx context.Context, keys ...string) error {
	if !c.Available() || len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.Key(key)
	}
	return c.client.Del(ctx, cacheKeys...).Err()
}

// GetOrLoad implements cache-aside: a hit is decoded into dest, a miss calls
// load and stores its result. Cache failures are logged and never returned.
func (c *Helper) GetOrLoad(ctx context.Context, key string, dest interface{}, load func(context.Context) (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		logger.Warn().Err(err).Str("key", c.Key(key)).Msg("Cache read failed, loading from source")
	}

	value, err := load(ctx)
	if err != nil {
		return err
	}

	if err := c.Set(ctx, key, value); err != nil {
		logger.Warn().Err(err).Str("key", c.Key(key)).Msg("Cache write failed")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// Ping verifies cache connectivity.
func Ping(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return ErrCacheNotAvailable
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
