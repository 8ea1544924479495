// Package ristretto implements the cache port with dgraph-io/ristretto as
// the in-process L1 in front of the shared L2.
package ristretto

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

const (
	bytesPerMB = 1 << 20

	// avgEntryBytes approximates one cached upcoming-bookings payload.
	avgEntryBytes = 1 << 10
)

// Cache is an in-process cache of encoded values. Values are copied on the
// way in and out so callers may reuse their buffers.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a cache holding at most maxSizeMB of keys and values.
func New(maxSizeMB int64) (*Cache, error) {
	maxCost := max(maxSizeMB, 1) * bytesPerMB
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		// Track admission counters for ten times the expected entry count.
		NumCounters:        maxCost / avgEntryBytes * 10,
		MaxCost:            maxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// Get returns a copy of the cached value.
func (c *Cache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	val, found := c.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return bytes.Clone(val), true, nil
}

// Set stores a copy of value for ttl. Ristretto may refuse the write under
// contention; the cache is best effort.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.c.SetWithTTL(key, bytes.Clone(value), int64(len(key)+len(value)), ttl)
	return nil
}

// Delete removes a value.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

// Wait blocks until buffered writes are applied.
func (c *Cache) Wait() {
	c.c.Wait()
}

// Close releases the cache's goroutines.
func (c *Cache) Close() {
	c.c.Close()
}
