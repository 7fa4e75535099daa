package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a backend failure for retry and status-mapping decisions.
type ErrorCode string

const (
	// ErrCodeNotFound - upstream confirmed the identifier does not exist. Terminal.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeNoAdapter - no adapter registered for the routed account type. Terminal.
	ErrCodeNoAdapter ErrorCode = "no_adapter"
	// ErrCodeUpstream - network failure or non-2xx upstream response. Retryable.
	ErrCodeUpstream ErrorCode = "upstream_error"
	// ErrCodeTimeout - a single attempt exceeded its per-call timeout. Retryable.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCircuitOpen - the breaker is open, no network attempt was made.
	ErrCodeCircuitOpen ErrorCode = "circuit_open"
	// ErrCodeInternal - a task failed inside the gateway itself (panic, bad state).
	ErrCodeInternal ErrorCode = "internal_error"
)

// BackendError is the only error type that crosses the resilience boundary.
// Adapters wrap everything they see into one of these.
type BackendError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NotFoundError builds the terminal not-found error for an identifier.
func NotFoundError(accountID string) *BackendError {
	return &BackendError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("account %s not found upstream", accountID),
		Retryable: false,
	}
}

// UpstreamError wraps a retryable upstream failure.
func UpstreamError(backend string, err error) *BackendError {
	return &BackendError{
		Code:      ErrCodeUpstream,
		Message:   fmt.Sprintf("%s: %v", backend, err),
		Retryable: true,
	}
}

// TimeoutError marks a single attempt that ran past its deadline.
func TimeoutError(backend string) *BackendError {
	return &BackendError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("%s: attempt timed out", backend),
		Retryable: true,
	}
}

// CircuitOpenError is returned without any network attempt while a breaker is open.
func CircuitOpenError(backend string) *BackendError {
	return &BackendError{
		Code:      ErrCodeCircuitOpen,
		Message:   fmt.Sprintf("%s: circuit open, request rejected", backend),
		Retryable: false,
	}
}

// InternalError wraps a gateway-side task failure.
func InternalError(err error) *BackendError {
	return &BackendError{
		Code:      ErrCodeInternal,
		Message:   fmt.Sprintf("internal: %v", err),
		Retryable: false,
	}
}

// AsBackendError extracts a *BackendError from err, wrapping unknown errors as
// retryable upstream failures so the policy layer always has a classification.
func AsBackendError(err error, backend string) *BackendError {
	var be *BackendError
	if errors.As(err, &be) {
		return be
	}
	return UpstreamError(backend, err)
}

// IsNotFound reports whether err is an upstream-confirmed not-found.
func IsNotFound(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Code == ErrCodeNotFound
}

// IsRetryable reports whether the policy layer may retry after err.
func IsRetryable(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Retryable
	}
	// Unclassified errors default to retryable; terminal outcomes are always
	// explicitly marked by the adapter.
	return true
}
