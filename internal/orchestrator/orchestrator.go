// Package orchestrator drives account lookups: cache consultation, adapter
// invocation through the resilience policy, stale fallback, and the bounded
// multi-account fan-out.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/cache"
	"github.com/finbridge/aqs/internal/domain"
	"github.com/finbridge/aqs/internal/events"
	"github.com/finbridge/aqs/internal/registry"
	"github.com/finbridge/aqs/internal/resilience"
)

const (
	// DefaultMaxConcurrency bounds how many account lookups run at once
	// within a batch.
	DefaultMaxConcurrency = 50
	// DefaultBatchTimeout is the overall deadline for a multi-account
	// fan-out.
	DefaultBatchTimeout = 2000 * time.Millisecond
)

// Options tune the multi-account fan-out.
type Options struct {
	MaxConcurrency int
	BatchTimeout   time.Duration
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = DefaultMaxConcurrency
	}
	if o.BatchTimeout <= 0 {
		o.BatchTimeout = DefaultBatchTimeout
	}
	return o
}

// Orchestrator owns the single-account lookup path and the batch fan-out.
// All collaborators are injected; the orchestrator holds no process-wide
// state of its own.
type Orchestrator struct {
	registry *registry.Registry
	cache    *cache.SummaryCache
	policy   *resilience.Policy
	bus      *events.Bus
	opts     Options
	log      zerolog.Logger
}

// New creates an orchestrator.
func New(reg *registry.Registry, summaryCache *cache.SummaryCache, policy *resilience.Policy, bus *events.Bus, opts Options, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		registry: reg,
		cache:    summaryCache,
		policy:   policy,
		bus:      bus,
		opts:     opts.withDefaults(),
		log:      log.With().Str("component", "orchestrator").Logger(),
	}
}

// GetAccount performs one account lookup: route, cache, adapter, stale
// fallback. It always returns a result, never an error - failures are folded
// into the result's status.
func (o *Orchestrator) GetAccount(ctx context.Context, accountID string, forceRefresh bool) domain.AccountResult {
	start := time.Now()

	accountType := registry.RouteAccountType(accountID)
	adapter, ok := o.registry.Lookup(accountType)
	if !ok {
		// No adapter for the routed type: terminal, no cache or adapter
		// access.
		return domain.AccountResult{
			AccountID: accountID,
			Status:    domain.ResultNotFound,
			Error: &domain.ResultError{
				Code:    domain.ErrCodeNoAdapter,
				Message: fmt.Sprintf("no adapter registered for account type %s", accountType),
			},
			LatencyMs: millisSince(start),
		}
	}

	if !forceRefresh {
		if summary, hit := o.cache.Get(accountID); hit == cache.HitFresh {
			o.publishCacheLookup(accountID, "hit")
			return domain.AccountResult{
				AccountID: accountID,
				Status:    domain.ResultOK,
				Data:      summary,
				LatencyMs: millisSince(start),
			}
		}
		// A stale entry is not consumed here; it only backs the fallback
		// after an adapter failure.
		o.publishCacheLookup(accountID, "miss")
	}

	outcome := o.invokeAdapter(ctx, adapter, accountID)
	if outcome.Success {
		o.cache.Set(outcome.Canonical)
		return domain.AccountResult{
			AccountID: accountID,
			Status:    domain.ResultOK,
			Data:      outcome.Canonical,
			LatencyMs: outcome.LatencyMs,
		}
	}

	if outcome.Err != nil && outcome.Err.Code == domain.ErrCodeNotFound {
		// Upstream confirmed the identifier does not exist; serving a stale
		// copy of a deleted account would be wrong.
		return domain.AccountResult{
			AccountID: accountID,
			Status:    domain.ResultNotFound,
			Error:     outcome.Err,
			LatencyMs: outcome.LatencyMs,
		}
	}

	// The stale window may still hold a usable value: degraded beats absent.
	if summary, hit := o.cache.Get(accountID); hit != cache.Miss {
		o.publishCacheLookup(accountID, "stale")
		return domain.AccountResult{
			AccountID: accountID,
			Status:    domain.ResultUnavailable,
			Data:      summary,
			Error:     outcome.Err,
			LatencyMs: millisSince(start),
		}
	}

	return domain.AccountResult{
		AccountID: accountID,
		Status:    domain.ResultUnavailable,
		Error:     outcome.Err,
		LatencyMs: millisSince(start),
	}
}

// invokeAdapter runs one adapter call through the resilience policy and folds
// the outcome. The adapter boundary never lets a failure escape as an error.
func (o *Orchestrator) invokeAdapter(ctx context.Context, adapter domain.BackendAdapter, accountID string) domain.AdapterOutcome {
	start := time.Now()

	summary, err := o.policy.Do(ctx, adapter.Name(), adapter.Profile(), func(ctx context.Context) (*domain.AccountSummary, error) {
		return adapter.FetchSummary(ctx, accountID)
	})

	outcome := domain.AdapterOutcome{
		AccountID: accountID,
		LatencyMs: millisSince(start),
	}
	if err != nil {
		be := domain.AsBackendError(err, adapter.Name())
		outcome.Err = &domain.ResultError{Code: be.Code, Message: be.Message}
	} else {
		outcome.Success = true
		outcome.Canonical = summary
	}

	if o.bus != nil {
		data := &events.AdapterCallData{
			Backend:   adapter.Name(),
			AccountID: accountID,
			Success:   outcome.Success,
			LatencyMs: outcome.LatencyMs,
		}
		if outcome.Err != nil {
			data.ErrorCode = string(outcome.Err.Code)
		}
		o.bus.Publish(data)
	}

	return outcome
}

func (o *Orchestrator) publishCacheLookup(accountID, outcome string) {
	if o.bus == nil {
		return
	}
	o.bus.Publish(&events.CacheLookupData{AccountID: accountID, Outcome: outcome})
}

func millisSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
