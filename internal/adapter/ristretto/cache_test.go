package ristretto_test

import (
	"context"
	"testing"
	"time"

	"github.com/Strob0t/ClientForge/internal/adapter/ristretto"
	"github.com/Strob0t/ClientForge/internal/port/cache/cachetest"
)

func TestCompliance(t *testing.T) {
	c, err := ristretto.New(1)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Close)
	cachetest.Run(t, c)
}

func TestExpiry(t *testing.T) {
	c, err := ristretto.New(1)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "bookings:short", []byte("x"), 20*time.Millisecond)
	c.Wait()
	time.Sleep(50 * time.Millisecond)

	if _, found, _ := c.Get(ctx, "bookings:short"); found {
		t.Error("expected entry to expire")
	}
}

func TestValuesAreCopied(t *testing.T) {
	c, err := ristretto.New(1)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	buf := []byte(`{"has_upcoming_bookings":true}`)
	_ = c.Set(ctx, "bookings:c-1", buf, time.Minute)
	c.Wait()
	buf[0] = 'X'

	got, found, _ := c.Get(ctx, "bookings:c-1")
	if !found || got[0] != '{' {
		t.Fatalf("stored value changed with the caller's buffer: %q", got)
	}
	got[1] = 'X'
	again, _, _ := c.Get(ctx, "bookings:c-1")
	if again[1] != '"' {
		t.Errorf("returned slice aliases the cached value: %q", again)
	}
}
