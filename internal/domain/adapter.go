package domain

import (
	"context"
	"time"
)

// RetryProfile carries the per-backend numbers fed into the resilience policy.
// These differ per backend: a known-slow legacy system gets a longer timeout and
// more retries than a fast modern one.
type RetryProfile struct {
	Timeout time.Duration // per-attempt deadline
	Retries int           // additional attempts after the first
	Backoff time.Duration // base delay, doubled between attempts
}

// BackendAdapter fetches and canonicalizes one account's data from one upstream
// system. Implementations own their base endpoint, credential material and
// retry profile. FetchSummary must distinguish a terminal not-found from
// retryable failures via BackendError codes and must never panic across this
// boundary.
type BackendAdapter interface {
	// Name is the backend tag used for circuit-breaker keying, telemetry and
	// the BackendSource field of produced summaries.
	Name() string

	// AccountType is the account type this adapter is responsible for.
	AccountType() AccountType

	// FetchSummary retrieves and canonicalizes a single account.
	FetchSummary(ctx context.Context, accountID string) (*AccountSummary, error)

	// HealthCheck performs a lightweight liveness probe. It never errors; any
	// failure collapses to false.
	HealthCheck(ctx context.Context) bool

	// Profile returns the timeout/retry numbers for this backend.
	Profile() RetryProfile
}

// DefaultHealth is embeddable by adapters whose upstream has no probe endpoint;
// it reports healthy unconditionally.
type DefaultHealth struct{}

// HealthCheck implements the default always-healthy probe.
func (DefaultHealth) HealthCheck(ctx context.Context) bool { return true }
