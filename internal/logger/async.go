package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Closer allows flushing and stopping the async handler.
type Closer interface {
	Close()
}

type nopCloser struct{}

func (nopCloser) Close() {}

// entry is a queued record together with the handler that must write it,
// so attributes bound with With survive the hop to the worker.
type entry struct {
	h   slog.Handler
	rec slog.Record
}

// asyncQueue is shared by an AsyncHandler and every handler derived from it.
type asyncQueue struct {
	mu      sync.RWMutex // guards closed against sends on a closed channel
	closed  bool
	ch      chan entry
	wg      sync.WaitGroup
	dropped atomic.Int64
	blockAt slog.Level
}

// AsyncHandler writes records on a small worker pool. When the buffer is
// full, records below Warn are dropped and counted; warnings and errors
// wait for room. Close flushes the buffer and logs how many records were
// dropped.
type AsyncHandler struct {
	inner slog.Handler
	q     *asyncQueue
}

// NewAsyncHandler creates an AsyncHandler with the given buffer size and
// worker count.
func NewAsyncHandler(inner slog.Handler, bufSize, workers int) *AsyncHandler {
	q := &asyncQueue{
		ch:      make(chan entry, bufSize),
		blockAt: slog.LevelWarn,
	}
	for range max(workers, 1) {
		q.wg.Add(1)
		go q.run()
	}
	return &AsyncHandler{inner: inner, q: q}
}

func (q *asyncQueue) run() {
	defer q.wg.Done()
	for e := range q.ch {
		_ = e.h.Handle(context.Background(), e.rec)
	}
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record. After Close records are written inline.
func (h *AsyncHandler) Handle(ctx context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	q := h.q
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return h.inner.Handle(ctx, rec)
	}

	e := entry{h: h.inner, rec: rec.Clone()}
	if rec.Level >= q.blockAt {
		q.ch <- e
		return nil
	}
	select {
	case q.ch <- e:
	default:
		q.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a handler sharing the same queue.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithAttrs(attrs), q: h.q}
}

// WithGroup returns a handler sharing the same queue.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithGroup(name), q: h.q}
}

// DroppedCount returns the number of records dropped so far.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.q.dropped.Load()
}

// Close stops accepting queued records, waits for the workers to drain and
// reports dropped records. It is safe to call more than once.
func (h *AsyncHandler) Close() {
	q := h.q
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()
	q.wg.Wait()

	if n := q.dropped.Load(); n > 0 {
		rec := slog.NewRecord(time.Now(), slog.LevelWarn, "async log buffer overflowed", 0)
		rec.AddAttrs(slog.Int64("dropped_records", n))
		_ = h.inner.Handle(context.Background(), rec)
	}
}
