package resilience

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the number of concurrent calls to an upstream.
// A nil Limiter imposes no bound.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter creates a Limiter admitting at most limit calls at once.
func NewLimiter(limit int) *Limiter {
	if limit < 1 {
		limit = 1
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(limit))}
}

// Run acquires a slot, runs fn, and releases the slot. It returns ctx.Err()
// if ctx ends while waiting.
func (l *Limiter) Run(ctx context.Context, fn func(context.Context) error) error {
	if l == nil || l.sem == nil {
		return fn(ctx)
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)
	return fn(ctx)
}
