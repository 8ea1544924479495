// Package cachetest provides a behavioural test suite shared by cache adapters.
package cachetest

import (
	"context"
	"testing"
	"time"

	"github.com/Strob0t/ClientForge/internal/port/cache"
)

// Settler is implemented by caches that apply writes asynchronously.
type Settler interface {
	Wait()
}

func settle(c cache.Cache) {
	if s, ok := c.(Settler); ok {
		s.Wait()
	}
}

// Run runs the compliance suite against any Cache implementation.
func Run(t *testing.T, c cache.Cache) {
	t.Helper()
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, "bookings:c-1", []byte(`{"has_upcoming_bookings":true}`), time.Minute); err != nil {
			t.Fatal(err)
		}
		settle(c)
		val, found, err := c.Get(ctx, "bookings:c-1")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after Set")
		}
		if string(val) != `{"has_upcoming_bookings":true}` {
			t.Fatalf("unexpected value %s", val)
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		_, found, err := c.Get(ctx, "bookings:unknown")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss for unknown key")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = c.Set(ctx, "bookings:c-2", []byte("x"), time.Minute)
		settle(c)
		if err := c.Delete(ctx, "bookings:c-2"); err != nil {
			t.Fatal(err)
		}
		_, found, err := c.Get(ctx, "bookings:c-2")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss after Delete")
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		if err := c.Delete(ctx, "bookings:never"); err != nil {
			t.Fatal("Delete of a missing key should not error")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = c.Set(ctx, "bookings:c-3", []byte("v1"), time.Minute)
		settle(c)
		_ = c.Set(ctx, "bookings:c-3", []byte("v2"), time.Minute)
		settle(c)
		val, found, err := c.Get(ctx, "bookings:c-3")
		if err != nil {
			t.Fatal(err)
		}
		if !found || string(val) != "v2" {
			t.Fatalf("expected v2 after overwrite, got %q (found=%v)", val, found)
		}
	})
}
