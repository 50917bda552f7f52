// Package cache is a small Redis-backed JSON cache for slow-changing HH
// reference data (dictionaries, areas) and short-lived per-user lookups
// (resumes, saved searches). The engine works without it: a nil *Cache or an
// unreachable Redis just means every call goes upstream.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	TTLReference = 7 * 24 * time.Hour // dictionaries, areas
	TTLPerUser   = time.Minute        // resumes, saved searches
)

type Cache struct {
	rdb *redis.Client
}

// Connect parses redisURL and verifies connectivity.
func Connect(ctx context.Context, redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{rdb: rdb}, nil
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// GetJSON returns the cached raw JSON for key, or nil on miss (or when the
// cache is disabled/unreachable).
func (c *Cache) GetJSON(ctx context.Context, key string) []byte {
	if c == nil || c.rdb == nil {
		return nil
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[cache] get %s: %v", key, err)
		}
		return nil
	}
	return b
}

// SetJSON stores raw JSON under key with a TTL; failures are logged only.
func (c *Cache) SetJSON(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		log.Printf("[cache] set %s: %v", key, err)
	}
}

func ResumesKey(userID string) string       { return "resumes:api:" + userID }
func SavedSearchesKey(userID string) string { return "saved_searches:" + userID }
