// Package resilience guards calls to the AI and calendar providers.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Strob0t/ClientForge/internal/config"
)

// ErrCircuitOpen is returned when the circuit breaker is open and rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker opens after a run of consecutive failures and rejects calls until
// the timeout elapses. It then admits a single probe: success closes the
// circuit, failure reopens it.
type Breaker struct {
	name        string
	maxFailures int
	timeout     time.Duration
	isFailure   func(error) bool
	now         func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// NewBreaker creates a named breaker from config.
func NewBreaker(name string, cfg config.Breaker) *Breaker {
	return &Breaker{
		name:        name,
		maxFailures: cfg.MaxFailures,
		timeout:     cfg.Timeout,
		isFailure:   func(err error) bool { return !errors.Is(err, context.Canceled) },
		now:         time.Now,
	}
}

// SetFailurePredicate decides which errors count toward tripping. Errors the
// predicate rejects (a provider's 4xx, for example) pass through without
// affecting the breaker.
func (b *Breaker) SetFailurePredicate(fn func(error) bool) {
	b.isFailure = fn
}

// State returns the current position, promoting open to half-open once the
// timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.timeout {
		return StateHalfOpen
	}
	return b.state
}

// Do runs fn if the circuit admits it.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if !b.admit() {
		return ErrCircuitOpen
	}
	err := fn(ctx)
	b.record(err)
	return err
}

func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.timeout {
			return false
		}
		b.transition(StateHalfOpen)
		b.probing = true
		return true
	default:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if err == nil || !b.isFailure(err) {
		b.failures = 0
		if b.state != StateClosed {
			b.transition(StateClosed)
		}
		return
	}

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.maxFailures {
		b.openedAt = b.now()
		if b.state != StateOpen {
			b.transition(StateOpen)
		}
	}
}

// transition must be called with b.mu held.
func (b *Breaker) transition(to State) {
	slog.Warn("circuit breaker state change", "breaker", b.name, "from", b.state.String(), "to", to.String(), "failures", b.failures)
	b.state = to
}
