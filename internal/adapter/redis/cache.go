// Package redis implements the cache port using Redis as L2 remote cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Strob0t/ClientForge/internal/config"
)

const keyPrefix = "clientforge:"

// Cache stores values in Redis with per-key TTLs.
type Cache struct {
	rdb *goredis.Client
}

// NewClient builds a Redis client from cache configuration and verifies it with PING.
func NewClient(ctx context.Context, cfg config.Cache) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}

// New wraps an existing client.
func New(rdb *goredis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Get retrieves a value. A missing key is a miss, not an error.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	val, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores a value. A zero ttl keeps the key until deleted.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
