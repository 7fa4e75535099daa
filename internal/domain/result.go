package domain

// ResultStatus is the per-account outcome of one orchestration.
type ResultStatus string

const (
	ResultOK          ResultStatus = "ok"
	ResultNotFound    ResultStatus = "not_found"
	ResultUnavailable ResultStatus = "unavailable"
	ResultPartial     ResultStatus = "partial"
)

// OverallStatus aggregates a multi-account batch.
type OverallStatus string

const (
	OverallOK      OverallStatus = "ok"
	OverallPartial OverallStatus = "partial"
	OverallError   OverallStatus = "error"
)

// ResultError is the wire-shaped error attached to a failed AccountResult.
type ResultError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AdapterOutcome is the result of one adapter invocation through its resilience
// policy. Created around the adapter call, folded into an AccountResult by the
// orchestrator and then discarded.
type AdapterOutcome struct {
	Success   bool
	AccountID string
	Canonical *AccountSummary // present iff Success
	Err       *ResultError    // present iff !Success
	LatencyMs int64
}

// AccountResult is one row of a multi-account response. Created once per
// requested identifier per orchestration call, never persisted.
type AccountResult struct {
	AccountID string          `json:"accountId"`
	Status    ResultStatus    `json:"status"`
	Data      *AccountSummary `json:"data,omitempty"`
	Error     *ResultError    `json:"error,omitempty"`
	LatencyMs int64           `json:"latencyMs"`
}

// BatchResult is the aggregate of a multi-account fan-out.
type BatchResult struct {
	RequestID     string          `json:"requestId"`
	OverallStatus OverallStatus   `json:"overallStatus"`
	TimedOut      bool            `json:"timedOut,omitempty"`
	Results       []AccountResult `json:"results"`
}
