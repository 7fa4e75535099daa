// Package events provides the in-process telemetry bus. Publishers fire and
// forget; a slow, absent or panicking subscriber never affects the call path.
package events

import "time"

// EventType identifies a gateway telemetry event.
type EventType string

const (
	// CacheHit - a fresh cache entry short-circuited an adapter call.
	CacheHit EventType = "cache.hit"
	// CacheMiss - no usable cache entry existed.
	CacheMiss EventType = "cache.miss"
	// CacheStale - a stale-but-usable entry was served.
	CacheStale EventType = "cache.stale"
	// AdapterCall - one adapter invocation finished (success or failure).
	AdapterCall EventType = "adapter.call"
	// BreakerStateChanged - a circuit breaker transitioned.
	BreakerStateChanged EventType = "breaker.state"
	// BackendHealth - a health sweep probed one backend.
	BackendHealth EventType = "backend.health"
)

// Event is one published telemetry record.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// EventData is implemented by all typed event payloads.
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// CacheLookupData contains data for cache hit/miss/stale events.
type CacheLookupData struct {
	AccountID string `json:"account_id"`
	Outcome   string `json:"outcome"`
}

// EventType returns the event type for CacheLookupData
func (d *CacheLookupData) EventType() EventType {
	switch d.Outcome {
	case "hit":
		return CacheHit
	case "stale":
		return CacheStale
	default:
		return CacheMiss
	}
}

// AdapterCallData contains data for AdapterCall events.
type AdapterCallData struct {
	Backend   string `json:"backend"`
	AccountID string `json:"account_id"`
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// EventType returns the event type for AdapterCallData
func (d *AdapterCallData) EventType() EventType {
	return AdapterCall
}

// BreakerStateData contains data for BreakerStateChanged events.
type BreakerStateData struct {
	Backend string `json:"backend"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// EventType returns the event type for BreakerStateData
func (d *BreakerStateData) EventType() EventType {
	return BreakerStateChanged
}

// BackendHealthData contains data for BackendHealth events.
type BackendHealthData struct {
	Backend string `json:"backend"`
	Healthy bool   `json:"healthy"`
}

// EventType returns the event type for BackendHealthData
func (d *BackendHealthData) EventType() EventType {
	return BackendHealth
}
