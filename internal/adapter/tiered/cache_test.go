package tiered_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/ClientForge/internal/adapter/tiered"
	"github.com/Strob0t/ClientForge/internal/port/cache/cachetest"
)

// memCache is a simple in-memory cache for testing.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *memCache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.data, key)
	return nil
}

func TestTiered_Compliance(t *testing.T) {
	cachetest.Run(t, tiered.New(newMemCache(), newMemCache(), time.Minute))
}

func TestTiered_L2HitWithBackfill(t *testing.T) {
	l1 := newMemCache()
	l2 := newMemCache()
	c := tiered.New(l1, l2, 30*time.Second)
	ctx := context.Background()

	l2.data["bookings:c-1"] = []byte("payload")

	val, found, err := c.Get(ctx, "bookings:c-1")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(val) != "payload" {
		t.Fatalf("expected L2 hit, got %q (found=%v)", val, found)
	}
	if string(l1.data["bookings:c-1"]) != "payload" {
		t.Fatal("expected L1 backfill")
	}
	if l1.ttls["bookings:c-1"] != 30*time.Second {
		t.Errorf("backfill ttl = %v, want 30s", l1.ttls["bookings:c-1"])
	}
}

func TestTiered_L1TTLCapped(t *testing.T) {
	l1 := newMemCache()
	l2 := newMemCache()
	c := tiered.New(l1, l2, 10*time.Second)

	if err := c.Set(context.Background(), "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if l1.ttls["k"] != 10*time.Second {
		t.Errorf("L1 ttl = %v, want 10s", l1.ttls["k"])
	}
	if l2.ttls["k"] != time.Hour {
		t.Errorf("L2 ttl = %v, want 1h", l2.ttls["k"])
	}
}

func TestTiered_L2Unavailable(t *testing.T) {
	l1 := newMemCache()
	l2 := newMemCache()
	l2.err = errors.New("connection refused")
	c := tiered.New(l1, l2, time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set should tolerate L2 failure, got %v", err)
	}
	val, found, err := c.Get(ctx, "k")
	if err != nil || !found || string(val) != "v" {
		t.Fatalf("expected L1 hit, got %q found=%v err=%v", val, found, err)
	}
	if _, found, err := c.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("expected clean miss when L2 is down, found=%v err=%v", found, err)
	}
	if err := c.Delete(ctx, "k"); err == nil {
		t.Error("Delete should report L2 failure")
	}
}
