package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Strob0t/ClientForge/internal/config"
)

// defaultMaxBuckets caps the number of tracked client IPs.
const defaultMaxBuckets = 100_000

// RateLimiter is per-IP token bucket rate limiting for the public intake endpoints.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	rate       float64
	burst      int
	maxBuckets int
	cleanup    time.Duration
	maxIdle    time.Duration
	now        func() time.Time
}

type bucket struct {
	tokens    float64
	updatedAt time.Time
}

// NewRateLimiter creates a rate limiter from the rate configuration.
func NewRateLimiter(cfg config.Rate) *RateLimiter {
	return &RateLimiter{
		buckets:    make(map[string]*bucket),
		rate:       cfg.RequestsPerSecond,
		burst:      cfg.Burst,
		maxBuckets: defaultMaxBuckets,
		cleanup:    cfg.CleanupInterval,
		maxIdle:    cfg.MaxIdleTime,
		now:        time.Now,
	}
}

// Handler returns HTTP middleware that enforces per-IP rate limiting.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remaining, retryAfter, allowed := rl.allow(clientIP(r))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter))))
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow reports whether a request from ip may proceed, the tokens left, and
// the seconds until the next token.
func (rl *RateLimiter) allow(ip string) (remaining int, retryAfter float64, allowed bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[ip]
	if !ok {
		if len(rl.buckets) >= rl.maxBuckets {
			return 0, 1 / rl.rate, false
		}
		b = &bucket{tokens: float64(rl.burst), updatedAt: now}
		rl.buckets[ip] = b
	}

	b.tokens = math.Min(float64(rl.burst), b.tokens+now.Sub(b.updatedAt).Seconds()*rl.rate)
	b.updatedAt = now

	if b.tokens < 1 {
		return 0, (1 - b.tokens) / rl.rate, false
	}
	b.tokens--
	return int(b.tokens), 0, true
}

// Run removes idle buckets every cleanup interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	if rl.cleanup <= 0 {
		return
	}
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.maxIdle)
	for ip, b := range rl.buckets {
		if b.updatedAt.Before(cutoff) {
			delete(rl.buckets, ip)
		}
	}
}

// Len returns the number of tracked IP buckets.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// clientIP extracts the client IP from RemoteAddr. Forwarding headers are
// ignored since they are client controlled.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
