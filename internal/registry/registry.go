// Package registry maps account identifiers to the backend adapter responsible
// for them.
package registry

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/domain"
)

// Registry stores one adapter per account type. Registration is
// last-wins: registering a second adapter for a type silently replaces the
// first. Lookup misses are not errors - the orchestrator maps them to
// not_found.
type Registry struct {
	adapters map[domain.AccountType]domain.BackendAdapter
	mu       sync.RWMutex
	log      zerolog.Logger
}

// New creates an empty adapter registry.
func New(log zerolog.Logger) *Registry {
	return &Registry{
		adapters: make(map[domain.AccountType]domain.BackendAdapter),
		log:      log.With().Str("component", "registry").Logger(),
	}
}

// Register stores an adapter keyed by its declared account type, overwriting
// any prior registration for that type.
func (r *Registry) Register(adapter domain.BackendAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accountType := adapter.AccountType()
	if prior, exists := r.adapters[accountType]; exists {
		r.log.Warn().
			Str("account_type", string(accountType)).
			Str("prior", prior.Name()).
			Str("replacement", adapter.Name()).
			Msg("Replacing registered adapter")
	}
	r.adapters[accountType] = adapter

	r.log.Info().
		Str("account_type", string(accountType)).
		Str("backend", adapter.Name()).
		Msg("Adapter registered")
}

// Lookup returns the adapter for an account type, if one is registered.
func (r *Registry) Lookup(accountType domain.AccountType) (domain.BackendAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[accountType]
	return adapter, ok
}

// All returns every registered adapter. Used by the health sweep.
func (r *Registry) All() []domain.BackendAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.BackendAdapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	return out
}
