package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Strob0t/ClientForge/internal/config"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(rps float64, burst int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(config.Rate{RequestsPerSecond: rps, Burst: burst, MaxIdleTime: time.Minute})
	rl.now = clock.now
	return rl, clock
}

func hit(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/clients/book-call", http.NoBody)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterBurstThenReject(t *testing.T) {
	rl, _ := newTestLimiter(1, 3)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := range 3 {
		if rec := hit(handler, "192.168.1.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := hit(handler, "192.168.1.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After 1, got %q", rec.Header().Get("Retry-After"))
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl, clock := newTestLimiter(2, 1)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	hit(handler, "10.0.0.1")
	if rec := hit(handler, "10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 before refill, got %d", rec.Code)
	}
	clock.advance(500 * time.Millisecond)
	if rec := hit(handler, "10.0.0.1"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after refill, got %d", rec.Code)
	}
}

func TestRateLimiterHeaders(t *testing.T) {
	rl, _ := newTestLimiter(10, 10)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := hit(handler, "192.168.1.1")
	if rec.Header().Get("X-RateLimit-Limit") != "10" {
		t.Errorf("limit header = %q", rec.Header().Get("X-RateLimit-Limit"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "9" {
		t.Errorf("remaining header = %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	rl, _ := newTestLimiter(1, 1)
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	hit(handler, "10.0.0.1")
	if rec := hit(handler, "10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("10.0.0.1: expected 429, got %d", rec.Code)
	}
	if rec := hit(handler, "10.0.0.2"); rec.Code != http.StatusOK {
		t.Errorf("10.0.0.2: expected 200, got %d", rec.Code)
	}
}

func TestRateLimiterEvictIdle(t *testing.T) {
	rl, clock := newTestLimiter(1, 1)
	rl.allow("10.0.0.1")
	clock.advance(30 * time.Second)
	rl.allow("10.0.0.2")
	clock.advance(45 * time.Second)

	rl.evictIdle()
	if rl.Len() != 1 {
		t.Fatalf("expected 1 bucket after eviction, got %d", rl.Len())
	}
}

func TestRateLimiterCapacity(t *testing.T) {
	rl, _ := newTestLimiter(1, 5)
	rl.maxBuckets = 1
	rl.allow("10.0.0.1")
	if _, _, ok := rl.allow("10.0.0.2"); ok {
		t.Error("expected rejection when tracking capacity is full")
	}
}
