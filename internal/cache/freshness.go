package cache

import "time"

// Freshness classifies a cached entry's age against its TTL class.
type Freshness int

const (
	// Fresh - age <= ttl, served as-is.
	Fresh Freshness = iota
	// Stale - ttl < age <= ttl+staleWindow, served with the stale flag set.
	Stale
	// Expired - age > ttl+staleWindow, treated as a miss even if the row
	// still exists in storage.
	Expired
)

// Evaluate is a pure function of the clock and the entry's write time, so
// staleness is unit-testable without a real clock.
func Evaluate(now, cachedAt time.Time, class TTLClass) Freshness {
	age := now.Sub(cachedAt)
	switch {
	case age <= class.TTL:
		return Fresh
	case age <= class.TTL+class.StaleWindow:
		return Stale
	default:
		return Expired
	}
}
