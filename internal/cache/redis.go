package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/nextfeed/feedapi/pkg/config"
	"github.com/nextfeed/feedapi/pkg/logging"
)

// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
var ErrCacheDisabled = fmt.Errorf("cache is disabled")

// Entry is a single key/value pair written with an expiry.
type Entry struct {
	Key   string
	Value string
	TTL   time.Duration
}

// Cache wraps the Redis client used as the feed cache store
type Cache struct {
	client *redis.Client
}

// New creates a new Redis cache client
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Cache{client: client}, nil
}

// Get retrieves a value from cache. A missing key yields an empty string,
// not an error.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrCacheDisabled
	}
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// MGet retrieves multiple values in a single round trip. Missing keys yield
// empty strings at their positions.
func (c *Cache) MGet(ctx context.Context, keys ...string) ([]string, error) {
	if c == nil || c.client == nil {
		return nil, ErrCacheDisabled
	}
	raw, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	vals := make([]string, len(raw))
	for i, v := range raw {
		if s, ok := v.(string); ok {
			vals[i] = s
		}
	}
	return vals, nil
}

// Set sets a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

// SetBatch writes all entries through a single pipeline so that related
// values land together.
func (c *Cache) SetBatch(ctx context.Context, entries []Entry) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	pipe := c.client.Pipeline()
	for _, e := range entries {
		pipe.Set(ctx, e.Key, e.Value, e.TTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Cache) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}
