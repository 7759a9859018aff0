// Package cache holds rendered article pages and comment trees between
// requests. Entries are dropped whenever the article or its comments change.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "newsroom:page:article:"

// PageCache stores rendered fragments of an article page
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	InvalidateArticle(ctx context.Context, articleID string) error
}

// RenderKey is the key of an article's rendered body
func RenderKey(articleID string) string {
	return keyPrefix + articleID + ":render"
}

// CommentsKey is the key of an article's comment tree
func CommentsKey(articleID string) string {
	return keyPrefix + articleID + ":comments"
}

// RedisCache is a PageCache backed by Redis. Failures are logged and
// reported as misses.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// Connect creates a Redis-backed cache and verifies connectivity
func Connect(url string, ttl time.Duration, log zerolog.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisCache(rdb, ttl, log), nil
}

// NewRedisCache wraps an existing client
func NewRedisCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisCache {
	return &RedisCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "cache").Logger(),
	}
}

// Get returns the cached value and whether it was found
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return nil, false
	}
	return val, true
}

// Set stores a value with the configured TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// InvalidateArticle drops the article's render and comment tree
func (c *RedisCache) InvalidateArticle(ctx context.Context, articleID string) error {
	if err := c.rdb.Del(ctx, RenderKey(articleID), CommentsKey(articleID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("article_id", articleID).Msg("Cache invalidation failed")
		return err
	}
	return nil
}

// Ping checks that Redis is reachable
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the Redis connection pool
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// Nop is a PageCache that never stores anything
type Nop struct{}

// Get always misses
func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }

// Set discards the value
func (Nop) Set(context.Context, string, []byte) {}

// InvalidateArticle has nothing to drop
func (Nop) InvalidateArticle(context.Context, string) error { return nil }

var (
	_ PageCache = (*RedisCache)(nil)
	_ PageCache = Nop{}
)
