package resilience

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestBreaker(now *time.Time) *CircuitBreaker {
	b := NewCircuitBreaker("test-backend", 5, 30*time.Second, zerolog.Nop())
	b.SetClock(func() time.Time { return *now })
	return b
}

func TestBreakerOpensOnFifthConsecutiveFailure(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	for i := 0; i < 4; i++ {
		b.RecordFailure()
		assert.Equal(t, StateClosed, b.State(), "still closed after %d failures", i+1)
	}

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerSuccessResetsStreak(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	for i := 0; i < 4; i++ {
		b.RecordFailure()
	}
	b.RecordSuccess()

	// The streak restarted; four more failures must not open the breaker.
	for i := 0; i < 4; i++ {
		b.RecordFailure()
	}
	assert.Equal(t, StateClosed, b.State())

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}

	assert.False(t, b.Allow())

	// Still inside the cooldown window.
	now = now.Add(29 * time.Second)
	assert.False(t, b.Allow())
}

func TestBreakerHalfOpenAfterCooldown(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}

	now = now.Add(31 * time.Second)
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestBreakerHalfOpenSuccessCloses(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	now = now.Add(31 * time.Second)
	b.Allow()

	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := newTestBreaker(&now)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	now = now.Add(31 * time.Second)
	b.Allow()

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())

	// The reopened breaker starts a fresh cooldown from now.
	assert.False(t, b.Allow())
	now = now.Add(31 * time.Second)
	assert.True(t, b.Allow())
}

func TestBreakerStoreSharesInstancePerName(t *testing.T) {
	store := NewBreakerStore(5, 30*time.Second, zerolog.Nop())

	a := store.Get("loan-book")
	b := store.Get("loan-book")
	c := store.Get("card-processor")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestBreakerStoreStates(t *testing.T) {
	store := NewBreakerStore(1, 30*time.Second, zerolog.Nop())

	store.Get("healthy-backend")
	store.Get("failing-backend").RecordFailure()

	states := store.States()
	assert.Equal(t, StateClosed, states["healthy-backend"])
	assert.Equal(t, StateOpen, states["failing-backend"])
}
