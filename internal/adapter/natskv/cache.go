// Package natskv implements the cache port on a NATS JetStream KV bucket,
// used as the shared L2 for upcoming-bookings lookups.
package natskv

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// expiryLen is the size of the expiry header stored before each value.
const expiryLen = 8

// Cache stores values in a KV bucket. The bucket TTL bounds every entry;
// a shorter per-call TTL is enforced on read from an expiry header.
type Cache struct {
	kv  jetstream.KeyValue
	now func() time.Time
}

// New creates a NATS KV-backed cache.
func New(kv jetstream.KeyValue) *Cache {
	return &Cache{kv: kv, now: time.Now}
}

var keyReplacer = strings.NewReplacer(":", ".", " ", "_", "*", "_", ">", "_")

// kvKey maps a cache key onto the NATS KV key alphabet.
func kvKey(key string) string {
	return keyReplacer.Replace(key)
}

// encode prefixes value with its expiry in unix nanoseconds; zero means
// the entry lives as long as the bucket allows.
func encode(value []byte, expires time.Time) []byte {
	buf := make([]byte, expiryLen+len(value))
	if !expires.IsZero() {
		binary.BigEndian.PutUint64(buf, uint64(expires.UnixNano()))
	}
	copy(buf[expiryLen:], value)
	return buf
}

// decode splits a stored entry. ok is false for expired or malformed entries.
func decode(raw []byte, now time.Time) (value []byte, ok bool) {
	if len(raw) < expiryLen {
		return nil, false
	}
	if exp := binary.BigEndian.Uint64(raw); exp != 0 && now.UnixNano() >= int64(exp) {
		return nil, false
	}
	return raw[expiryLen:], true
}

// Get returns a live entry. Expired entries read as a miss.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	entry, err := c.kv.Get(ctx, kvKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %s: %w", key, err)
	}
	data, ok = decode(entry.Value(), c.now())
	return data, ok, nil
}

// Set stores value until ttl elapses or the bucket TTL, whichever is first.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}
	if _, err := c.kv.Put(ctx, kvKey(key), encode(value, expires)); err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

// Delete removes an entry. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, kvKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}
