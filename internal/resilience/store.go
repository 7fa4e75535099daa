package resilience

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// BreakerStore holds one circuit breaker per backend name, created lazily on
// first use and kept for the process lifetime. The store is an owned object
// injected into the policy - no package-level state, so tests get isolated
// breaker tables.
type BreakerStore struct {
	threshold int
	cooldown  time.Duration
	breakers  map[string]*CircuitBreaker
	onChange  func(backend string, from, to State)
	mu        sync.Mutex
	log       zerolog.Logger
}

// NewBreakerStore creates a store producing breakers with the given settings.
// Zero values fall back to the defaults (5 failures, 30s cooldown).
func NewBreakerStore(threshold int, cooldown time.Duration, log zerolog.Logger) *BreakerStore {
	return &BreakerStore{
		threshold: threshold,
		cooldown:  cooldown,
		breakers:  make(map[string]*CircuitBreaker),
		log:       log,
	}
}

// SetOnStateChange registers a transition hook applied to every breaker the
// store creates from now on.
func (s *BreakerStore) SetOnStateChange(fn func(backend string, from, to State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
	for _, b := range s.breakers {
		b.SetOnStateChange(fn)
	}
}

// Get returns the breaker for a backend name, creating it on first use.
func (s *BreakerStore) Get(backend string) *CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.breakers[backend]
	if !ok {
		b = NewCircuitBreaker(backend, s.threshold, s.cooldown, s.log)
		if s.onChange != nil {
			b.SetOnStateChange(s.onChange)
		}
		s.breakers[backend] = b
	}
	return b
}

// States snapshots the current state of every known breaker. Used by the
// operator endpoint.
func (s *BreakerStore) States() map[string]State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]State, len(s.breakers))
	for name, b := range s.breakers {
		out[name] = b.State()
	}
	return out
}
