package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/aqs/internal/domain"
)

func TestGetAccountsEmptyInput(t *testing.T) {
	h := setup(t, Options{})

	result := h.orch.GetAccounts(context.Background(), "req-1", nil, false)

	assert.Equal(t, domain.OverallOK, result.OverallStatus)
	assert.False(t, result.TimedOut)
	assert.Empty(t, result.Results)
}

func TestGetAccountsAllOKPreservesOrder(t *testing.T) {
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank, fetch: okFetch(domain.TypeBank, "core-banking")}
	crypto := &fakeAdapter{name: "wallet-gateway", accountType: domain.TypeCrypto, fetch: okFetch(domain.TypeCrypto, "wallet-gateway")}
	h := setup(t, Options{}, bank, crypto)

	ids := []string{"bnk-003", "cry-001", "bnk-001", "cry-009"}
	result := h.orch.GetAccounts(context.Background(), "req-2", ids, false)

	assert.Equal(t, domain.OverallOK, result.OverallStatus)
	require.Len(t, result.Results, len(ids))
	for i, row := range result.Results {
		assert.Equal(t, ids[i], row.AccountID)
		assert.Equal(t, domain.ResultOK, row.Status)
	}
}

func TestGetAccountsMixedOutcomesIsPartial(t *testing.T) {
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank, fetch: okFetch(domain.TypeBank, "core-banking")}
	crypto := &fakeAdapter{name: "wallet-gateway", accountType: domain.TypeCrypto}
	crypto.fetch = func(context.Context, string) (*domain.AccountSummary, error) {
		return nil, domain.UpstreamError("wallet-gateway", errors.New("down"))
	}
	h := setup(t, Options{}, bank, crypto)

	result := h.orch.GetAccounts(context.Background(), "req-3", []string{"bnk-001", "cry-001"}, false)

	assert.Equal(t, domain.OverallPartial, result.OverallStatus)
	assert.Equal(t, domain.ResultOK, result.Results[0].Status)
	assert.Equal(t, domain.ResultUnavailable, result.Results[1].Status)
}

func TestGetAccountsAllFailedIsError(t *testing.T) {
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank}
	bank.fetch = func(context.Context, string) (*domain.AccountSummary, error) {
		return nil, domain.UpstreamError("core-banking", errors.New("down"))
	}
	h := setup(t, Options{}, bank)

	result := h.orch.GetAccounts(context.Background(), "req-4", []string{"bnk-001", "bnk-002"}, false)

	assert.Equal(t, domain.OverallError, result.OverallStatus)
	assert.False(t, result.TimedOut)
}

func TestGetAccountsConcurrencyCeiling(t *testing.T) {
	var inFlight, peak atomic.Int64
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank}
	bank.fetch = func(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return okFetch(domain.TypeBank, "core-banking")(ctx, accountID)
	}
	h := setup(t, Options{MaxConcurrency: 4}, bank)

	ids := make([]string, 20)
	for i := range ids {
		ids[i] = "bnk-" + string(rune('a'+i))
	}
	// Each identifier must be unique so no lookup is served from cache.
	result := h.orch.GetAccounts(context.Background(), "req-5", ids, true)

	assert.Equal(t, domain.OverallOK, result.OverallStatus)
	assert.LessOrEqual(t, peak.Load(), int64(4))
}

func TestGetAccountsChunkRoundsBoundWallTime(t *testing.T) {
	const perLookup = 50 * time.Millisecond
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank}
	bank.fetch = func(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
		time.Sleep(perLookup)
		return okFetch(domain.TypeBank, "core-banking")(ctx, accountID)
	}
	h := setup(t, Options{MaxConcurrency: 50}, bank)

	ids := make([]string, 60)
	for i := range ids {
		ids[i] = fmt.Sprintf("bnk-%03d", i)
	}

	// 60 lookups at a ceiling of 50 should take two rounds, not sixty.
	start := time.Now()
	result := h.orch.GetAccounts(context.Background(), "req-rounds", ids, true)
	elapsed := time.Since(start)

	assert.Equal(t, domain.OverallOK, result.OverallStatus)
	require.Len(t, result.Results, len(ids))
	assert.GreaterOrEqual(t, elapsed, 2*perLookup)
	assert.Less(t, elapsed, time.Second, "lookups must fan out, not run serially")
}

func TestGetAccountsTimeoutReturnsCompletedOnly(t *testing.T) {
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank, fetch: okFetch(domain.TypeBank, "core-banking")}
	crypto := &fakeAdapter{
		name:        "wallet-gateway",
		accountType: domain.TypeCrypto,
		profile:     domain.RetryProfile{Timeout: 2 * time.Second, Retries: 0, Backoff: time.Millisecond},
	}
	crypto.fetch = func(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
		time.Sleep(500 * time.Millisecond)
		return okFetch(domain.TypeCrypto, "wallet-gateway")(ctx, accountID)
	}
	h := setup(t, Options{BatchTimeout: 150 * time.Millisecond}, bank, crypto)

	result := h.orch.GetAccounts(context.Background(), "req-6", []string{"bnk-001", "cry-001", "bnk-002"}, false)

	assert.True(t, result.TimedOut)
	assert.Equal(t, domain.OverallPartial, result.OverallStatus)
	require.Len(t, result.Results, 2, "only settled lookups belong in a timed-out response")
	assert.Equal(t, "bnk-001", result.Results[0].AccountID)
	assert.Equal(t, "bnk-002", result.Results[1].AccountID)
}

func TestGetAccountsTimedOutLookupStillPopulatesCache(t *testing.T) {
	release := make(chan struct{})
	crypto := &fakeAdapter{
		name:        "wallet-gateway",
		accountType: domain.TypeCrypto,
		profile:     domain.RetryProfile{Timeout: 2 * time.Second, Retries: 0, Backoff: time.Millisecond},
	}
	crypto.fetch = func(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
		<-release
		return okFetch(domain.TypeCrypto, "wallet-gateway")(ctx, accountID)
	}
	h := setup(t, Options{BatchTimeout: 50 * time.Millisecond}, crypto)

	result := h.orch.GetAccounts(context.Background(), "req-7", []string{"cry-001"}, false)
	require.True(t, result.TimedOut)
	require.Empty(t, result.Results)

	close(release)
	assert.Eventually(t, func() bool {
		return h.cache.Count() == 1
	}, 2*time.Second, 20*time.Millisecond, "the in-flight lookup should finish and write through")
}

func TestGetAccountsPanickingAdapterDegradesRow(t *testing.T) {
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank, fetch: okFetch(domain.TypeBank, "core-banking")}
	crypto := &fakeAdapter{name: "wallet-gateway", accountType: domain.TypeCrypto}
	crypto.fetch = func(context.Context, string) (*domain.AccountSummary, error) {
		panic("mapper bug")
	}
	h := setup(t, Options{}, bank, crypto)

	result := h.orch.GetAccounts(context.Background(), "req-8", []string{"bnk-001", "cry-001"}, false)

	assert.Equal(t, domain.OverallPartial, result.OverallStatus)
	require.Len(t, result.Results, 2)
	assert.Equal(t, domain.ResultOK, result.Results[0].Status)
	assert.Equal(t, domain.ResultUnavailable, result.Results[1].Status)
	require.NotNil(t, result.Results[1].Error)
	assert.Equal(t, domain.ErrCodeInternal, result.Results[1].Error.Code)
}

func TestOverallStatusTable(t *testing.T) {
	okRow := domain.AccountResult{Status: domain.ResultOK}
	badRow := domain.AccountResult{Status: domain.ResultUnavailable}

	tests := []struct {
		name      string
		results   []domain.AccountResult
		requested int
		timedOut  bool
		want      domain.OverallStatus
	}{
		{"all ok", []domain.AccountResult{okRow, okRow}, 2, false, domain.OverallOK},
		{"none ok", []domain.AccountResult{badRow, badRow}, 2, false, domain.OverallError},
		{"mixed", []domain.AccountResult{okRow, badRow}, 2, false, domain.OverallPartial},
		{"timed out all completed ok", []domain.AccountResult{okRow, okRow}, 2, true, domain.OverallPartial},
		{"timed out nothing completed", nil, 2, true, domain.OverallPartial},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, overallStatus(tc.results, tc.requested, tc.timedOut))
		})
	}
}
