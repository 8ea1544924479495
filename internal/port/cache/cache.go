// Package cache defines the port interface for caching and the typed
// helpers services use on top of it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is the port interface for key-value caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// UpcomingBookingsKey is the key under which a client's scheduled calls
// are cached.
func UpcomingBookingsKey(clientID string) string { return "bookings:" + clientID }

// GetJSON reads and decodes a cached value. A value that no longer decodes
// is reported as a miss so the caller refills it.
func GetJSON[T any](ctx context.Context, c Cache, key string) (*T, bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false, nil
	}
	return &v, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
