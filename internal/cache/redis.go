// Package cache implements the Redis-backed token cache and login rate limiter.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the client pool and key layout.
type Options struct {
	PoolSize int
	// KeyPrefix namespaces every key so several services can share one Redis.
	KeyPrefix string
	TokenTTL  time.Duration
}

// DefaultOptions returns the settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		PoolSize:  10,
		KeyPrefix: "accounts:",
		TokenTTL:  5 * time.Minute,
	}
}

// Cache holds token ownership entries and rate limit buckets.
type Cache struct {
	client   *redis.Client
	prefix   string
	tokenTTL time.Duration
}

// New connects to redisURL and verifies the connection.
// Zero fields in opts fall back to DefaultOptions.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	redisOpt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts = withDefaults(opts)
	redisOpt.PoolSize = opts.PoolSize
	redisOpt.MinIdleConns = max(1, opts.PoolSize/5)
	redisOpt.PoolTimeout = 4 * time.Second
	redisOpt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(redisOpt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return newCache(client, opts), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, opts Options) *Cache {
	return newCache(client, withDefaults(opts))
}

func newCache(client *redis.Client, opts Options) *Cache {
	return &Cache{
		client:   client,
		prefix:   opts.KeyPrefix,
		tokenTTL: opts.TokenTTL,
	}
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.PoolSize <= 0 {
		opts.PoolSize = def.PoolSize
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = def.KeyPrefix
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = def.TokenTTL
	}
	return opts
}

// key joins the namespace prefix with parts.
func (c *Cache) key(parts ...string) string {
	k := c.prefix
	for _, p := range parts {
		k += p
	}
	return k
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
