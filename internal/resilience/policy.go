package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/domain"
)

// Operation is the unit of work guarded by a policy. Implementations must
// honor the attempt context's deadline.
type Operation func(ctx context.Context) (*domain.AccountSummary, error)

// Policy composes a per-attempt timeout, exponential-backoff retry and a
// per-backend circuit breaker around one operation. The composed call
// surfaces exactly one terminal outcome: a summary or an error, never both.
type Policy struct {
	breakers *BreakerStore
	log      zerolog.Logger
}

// NewPolicy creates a policy backed by the given breaker store.
func NewPolicy(breakers *BreakerStore, log zerolog.Logger) *Policy {
	return &Policy{
		breakers: breakers,
		log:      log.With().Str("component", "resilience").Logger(),
	}
}

// Breakers exposes the underlying store for state introspection.
func (p *Policy) Breakers() *BreakerStore { return p.breakers }

// Do runs op under the backend's breaker with the profile's timeout and retry
// numbers. While the breaker is open the call fails immediately with a
// circuit-open error and no network attempt is made. Each attempt is bounded
// by the profile timeout independent of the retry count; a timed-out attempt
// is a failure for retry and breaker purposes. Intermediate failures are
// swallowed, the final one is surfaced.
func (p *Policy) Do(ctx context.Context, backend string, profile domain.RetryProfile, op Operation) (*domain.AccountSummary, error) {
	breaker := p.breakers.Get(backend)

	var lastErr error
	attempts := profile.Retries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if !breaker.Allow() {
			if lastErr != nil {
				// The breaker opened under us mid-retry; the last real
				// failure is more useful to the caller than circuit-open.
				return nil, lastErr
			}
			return nil, domain.CircuitOpenError(backend)
		}

		if attempt > 0 {
			if err := sleepBackoff(ctx, profile.Backoff, attempt); err != nil {
				return nil, domain.AsBackendError(err, backend)
			}
			p.log.Debug().
				Str("backend", backend).
				Int("attempt", attempt+1).
				Msg("Retrying after backoff")
		}

		summary, err := p.runAttempt(ctx, backend, profile.Timeout, op)
		if err == nil {
			breaker.RecordSuccess()
			return summary, nil
		}

		if domain.IsNotFound(err) {
			// An authoritative not-found is a completed round trip, not a
			// struggling backend.
			breaker.RecordSuccess()
			return nil, err
		}

		breaker.RecordFailure()
		lastErr = err

		if !domain.IsRetryable(err) {
			break
		}
	}

	return nil, lastErr
}

// runAttempt bounds a single attempt with the per-call timeout and normalizes
// a deadline overrun into a timeout error.
func (p *Policy) runAttempt(ctx context.Context, backend string, timeout time.Duration, op Operation) (*domain.AccountSummary, error) {
	attemptCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	summary, err := op(attemptCtx)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, domain.TimeoutError(backend)
		}
		return nil, domain.AsBackendError(err, backend)
	}
	return summary, nil
}

// sleepBackoff waits base << (attempt-1), giving up early if ctx is done.
func sleepBackoff(ctx context.Context, base time.Duration, attempt int) error {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	delay := base << uint(attempt-1)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
