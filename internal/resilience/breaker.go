// Package resilience wraps a single asynchronous unit of work with timeout,
// retry and circuit-breaking, composed in that fixed order: timeout innermost,
// retry around it, circuit breaker outermost.
package resilience

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the current position of a breaker's state machine.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

const (
	// DefaultFailureThreshold opens the breaker after this many consecutive
	// failures.
	DefaultFailureThreshold = 5
	// DefaultCooldown is how long an open breaker rejects calls before a probe
	// is allowed through.
	DefaultCooldown = 30 * time.Second
)

// CircuitBreaker is an explicit per-backend failure-isolation state machine:
// closed --(N consecutive failures)--> open --(cooldown elapsed)--> half_open
// --(success)--> closed / --(failure)--> open. One instance exists per backend
// name and is shared across all calls to that backend, concurrent ones
// included. Counter updates hold the mutex; a slightly racy open/close
// transition under contention is an accepted tradeoff.
type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration

	state    State
	failures int
	openedAt time.Time
	now      func() time.Time
	mu       sync.Mutex
	log      zerolog.Logger
	onChange func(backend string, from, to State)
}

// NewCircuitBreaker creates a closed breaker for one backend name.
func NewCircuitBreaker(name string, threshold int, cooldown time.Duration, log zerolog.Logger) *CircuitBreaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &CircuitBreaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		state:     StateClosed,
		now:       time.Now,
		log:       log.With().Str("component", "breaker").Str("backend", name).Logger(),
	}
}

// SetClock overrides the breaker's clock. Used by tests.
func (b *CircuitBreaker) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// SetOnStateChange registers a fire-and-forget transition hook.
func (b *CircuitBreaker) SetOnStateChange(fn func(backend string, from, to State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

// Allow reports whether a call may proceed. An open breaker whose cooldown has
// elapsed moves to half_open and lets exactly this caller probe the backend.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) >= b.cooldown {
			b.transition(StateHalfOpen)
			return true
		}
		return false
	}
	return true
}

// RecordSuccess resets the failure streak and closes a half-open breaker.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state != StateClosed {
		b.transition(StateClosed)
	}
}

// RecordFailure increments the consecutive-failure counter. The breaker opens
// on the threshold'th consecutive failure, or immediately when a half-open
// probe fails.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.open()
		return
	}

	b.failures++
	if b.failures >= b.threshold && b.state == StateClosed {
		b.open()
	}
}

// State returns the breaker's current state for introspection and tests.
func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// open must be called with the mutex held.
func (b *CircuitBreaker) open() {
	b.openedAt = b.now()
	b.failures = 0
	b.transition(StateOpen)
}

// transition must be called with the mutex held.
func (b *CircuitBreaker) transition(to State) {
	from := b.state
	b.state = to

	b.log.Warn().
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Circuit breaker state change")

	if b.onChange != nil {
		// Hook failures must never affect the call path.
		hook := b.onChange
		go func() {
			defer func() { _ = recover() }()
			hook(b.name, from, to)
		}()
	}
}
