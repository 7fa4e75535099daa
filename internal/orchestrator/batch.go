package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/finbridge/aqs/internal/domain"
)

// batchState collects per-account results as workers finish. Reads and writes
// go through the mutex; the timeout path takes exactly one snapshot so a
// response never mixes two points in time.
type batchState struct {
	mu      sync.Mutex
	results []domain.AccountResult
	done    []bool
}

func newBatchState(n int) *batchState {
	return &batchState{
		results: make([]domain.AccountResult, n),
		done:    make([]bool, n),
	}
}

func (s *batchState) set(idx int, result domain.AccountResult) {
	s.mu.Lock()
	s.results[idx] = result
	s.done[idx] = true
	s.mu.Unlock()
}

// snapshot returns the completed results in input order.
func (s *batchState) snapshot() []domain.AccountResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.AccountResult, 0, len(s.results))
	for i, done := range s.done {
		if done {
			out = append(out, s.results[i])
		}
	}
	return out
}

// GetAccounts fans a batch of lookups out across the adapters in bounded
// chunks and aggregates the rows. Lookups still in flight when the batch
// deadline fires are dropped from the response but allowed to finish in the
// background so their cache writes land.
func (o *Orchestrator) GetAccounts(ctx context.Context, requestID string, accountIDs []string, forceRefresh bool) domain.BatchResult {
	if len(accountIDs) == 0 {
		return domain.BatchResult{
			RequestID:     requestID,
			OverallStatus: domain.OverallOK,
			Results:       []domain.AccountResult{},
		}
	}

	state := newBatchState(len(accountIDs))
	allDone := make(chan struct{})

	// Workers run detached from the request context: net/http cancels it as
	// soon as the timed-out response is written, and an aborted lookup would
	// never land its cache write. The request context still participates in
	// the deadline race below.
	detached := context.WithoutCancel(ctx)
	go func() {
		o.runBatch(detached, accountIDs, forceRefresh, state)
		close(allDone)
	}()

	timer := time.NewTimer(o.opts.BatchTimeout)
	defer timer.Stop()

	timedOut := false
	select {
	case <-allDone:
	case <-timer.C:
		timedOut = true
	case <-ctx.Done():
		timedOut = true
	}

	results := state.snapshot()

	result := domain.BatchResult{
		RequestID:     requestID,
		OverallStatus: overallStatus(results, len(accountIDs), timedOut),
		TimedOut:      timedOut,
		Results:       results,
	}

	o.log.Info().
		Str("request_id", requestID).
		Int("requested", len(accountIDs)).
		Int("completed", len(results)).
		Bool("timed_out", timedOut).
		Str("overall_status", string(result.OverallStatus)).
		Msg("Batch lookup finished")

	return result
}

// runBatch processes the identifiers chunk by chunk; a chunk fully settles
// before the next one starts, so at most MaxConcurrency lookups run at once.
func (o *Orchestrator) runBatch(ctx context.Context, accountIDs []string, forceRefresh bool, state *batchState) {
	size := o.opts.MaxConcurrency

	for offset := 0; offset < len(accountIDs); offset += size {
		end := offset + size
		if end > len(accountIDs) {
			end = len(accountIDs)
		}

		var wg sync.WaitGroup
		for i, accountID := range accountIDs[offset:end] {
			wg.Add(1)
			go func(idx int, id string) {
				defer wg.Done()
				state.set(idx, o.safeGetAccount(ctx, id, forceRefresh))
			}(offset+i, accountID)
		}
		wg.Wait()
	}
}

// safeGetAccount shields the batch from a panicking lookup; the row degrades
// to an internal error instead of taking the whole batch down.
func (o *Orchestrator) safeGetAccount(ctx context.Context, accountID string, forceRefresh bool) (result domain.AccountResult) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().
				Interface("panic", r).
				Str("account_id", accountID).
				Msg("Account lookup panicked")
			result = domain.AccountResult{
				AccountID: accountID,
				Status:    domain.ResultUnavailable,
				Error: &domain.ResultError{
					Code:    domain.ErrCodeInternal,
					Message: "internal error during account lookup",
				},
			}
		}
	}()
	return o.GetAccount(ctx, accountID, forceRefresh)
}

// overallStatus folds the batch rows: ok only when every requested account
// succeeded, error when nothing did, partial for everything in between. A
// timed-out batch is partial by definition.
func overallStatus(results []domain.AccountResult, requested int, timedOut bool) domain.OverallStatus {
	if timedOut {
		return domain.OverallPartial
	}

	okCount := 0
	for _, r := range results {
		if r.Status == domain.ResultOK {
			okCount++
		}
	}

	switch {
	case okCount == requested && len(results) == requested:
		return domain.OverallOK
	case okCount == 0:
		return domain.OverallError
	default:
		return domain.OverallPartial
	}
}
