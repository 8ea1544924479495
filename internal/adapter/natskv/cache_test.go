package natskv

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Strob0t/ClientForge/internal/port/cache/cachetest"
)

func TestKVKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"bookings:c-1", "bookings.c-1"},
		{"bookings:a b", "bookings.a_b"},
		{"plain", "plain"},
		{"x:*:>", "x._._"},
	}
	for _, tt := range tests {
		if got := kvKey(tt.in); got != tt.want {
			t.Errorf("kvKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvelope(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := encode([]byte(`{"has_upcoming_bookings":true}`), now.Add(time.Minute))

	v, ok := decode(raw, now)
	if !ok || string(v) != `{"has_upcoming_bookings":true}` {
		t.Fatalf("decode before expiry = %q, %v", v, ok)
	}
	if _, ok := decode(raw, now.Add(time.Minute)); ok {
		t.Error("entry should be expired at its deadline")
	}

	forever := encode([]byte("x"), time.Time{})
	if v, ok := decode(forever, now.Add(24*time.Hour)); !ok || string(v) != "x" {
		t.Errorf("entry without ttl = %q, %v", v, ok)
	}
	if _, ok := decode([]byte{1, 2}, now); ok {
		t.Error("short entry should be rejected")
	}
}

func TestCompliance(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}
	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: "CLIENTFORGE_CACHE_TEST",
		TTL:    time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = js.DeleteKeyValue(ctx, "CLIENTFORGE_CACHE_TEST") })

	cachetest.Run(t, New(kv))
}
