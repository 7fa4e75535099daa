package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/aqs/internal/cache"
	"github.com/finbridge/aqs/internal/database"
	"github.com/finbridge/aqs/internal/domain"
	"github.com/finbridge/aqs/internal/events"
	"github.com/finbridge/aqs/internal/registry"
	"github.com/finbridge/aqs/internal/resilience"
)

// fakeAdapter is a scriptable backend for orchestrator tests.
type fakeAdapter struct {
	name        string
	accountType domain.AccountType
	fetch       func(ctx context.Context, accountID string) (*domain.AccountSummary, error)
	profile     domain.RetryProfile
	unhealthy   bool
	calls       atomic.Int64
}

func (f *fakeAdapter) Name() string                    { return f.name }
func (f *fakeAdapter) AccountType() domain.AccountType { return f.accountType }
func (f *fakeAdapter) HealthCheck(ctx context.Context) bool {
	return !f.unhealthy
}

func (f *fakeAdapter) FetchSummary(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
	f.calls.Add(1)
	return f.fetch(ctx, accountID)
}

func (f *fakeAdapter) Profile() domain.RetryProfile {
	if f.profile.Timeout > 0 {
		return f.profile
	}
	return domain.RetryProfile{Timeout: time.Second, Retries: 0, Backoff: time.Millisecond}
}

func okFetch(accountType domain.AccountType, backend string) func(context.Context, string) (*domain.AccountSummary, error) {
	return func(_ context.Context, accountID string) (*domain.AccountSummary, error) {
		return &domain.AccountSummary{
			AccountID:     accountID,
			AccountType:   accountType,
			Balances:      []domain.Balance{{Currency: "EUR", Available: 10, Ledger: 10}},
			Status:        domain.StatusActive,
			BackendSource: backend,
			LastUpdated:   time.Now().UTC(),
		}, nil
	}
}

type harness struct {
	orch     *Orchestrator
	cache    *cache.SummaryCache
	registry *registry.Registry
	breakers *resilience.BreakerStore
	bus      *events.Bus
}

func setup(t *testing.T, opts Options, adapters ...domain.BackendAdapter) *harness {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := cache.NewStore(db)
	require.NoError(t, err)
	summaryCache := cache.New(store, zerolog.Nop())

	reg := registry.New(zerolog.Nop())
	for _, a := range adapters {
		reg.Register(a)
	}

	breakers := resilience.NewBreakerStore(5, 30*time.Second, zerolog.Nop())
	policy := resilience.NewPolicy(breakers, zerolog.Nop())
	bus := events.NewBus(zerolog.Nop())

	return &harness{
		orch:     New(reg, summaryCache, policy, bus, opts, zerolog.Nop()),
		cache:    summaryCache,
		registry: reg,
		breakers: breakers,
		bus:      bus,
	}
}

func TestGetAccountNoAdapterForType(t *testing.T) {
	h := setup(t, Options{}) // nothing registered

	result := h.orch.GetAccount(context.Background(), "crd-100", false)

	assert.Equal(t, domain.ResultNotFound, result.Status)
	require.NotNil(t, result.Error)
	assert.Equal(t, domain.ErrCodeNoAdapter, result.Error.Code)
	assert.Nil(t, result.Data)
}

func TestGetAccountFreshHitSkipsAdapter(t *testing.T) {
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank, fetch: okFetch(domain.TypeBank, "core-banking")}
	h := setup(t, Options{}, bank)

	first := h.orch.GetAccount(context.Background(), "bnk-001", false)
	require.Equal(t, domain.ResultOK, first.Status)
	require.EqualValues(t, 1, bank.calls.Load())

	second := h.orch.GetAccount(context.Background(), "bnk-001", false)
	assert.Equal(t, domain.ResultOK, second.Status)
	assert.False(t, second.Data.Stale)
	assert.EqualValues(t, 1, bank.calls.Load(), "fresh hit must not reach the adapter")
}

func TestGetAccountForceRefreshBypassesCache(t *testing.T) {
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank, fetch: okFetch(domain.TypeBank, "core-banking")}
	h := setup(t, Options{}, bank)

	h.orch.GetAccount(context.Background(), "bnk-001", false)
	h.orch.GetAccount(context.Background(), "bnk-001", true)

	assert.EqualValues(t, 2, bank.calls.Load())
}

func TestGetAccountStaleFallbackOnFailure(t *testing.T) {
	healthy := true
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank}
	bank.fetch = func(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
		if !healthy {
			return nil, domain.UpstreamError("core-banking", errors.New("connection refused"))
		}
		return okFetch(domain.TypeBank, "core-banking")(ctx, accountID)
	}
	h := setup(t, Options{}, bank)

	writeTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := writeTime
	h.cache.SetClock(func() time.Time { return now })

	require.Equal(t, domain.ResultOK, h.orch.GetAccount(context.Background(), "bnk-001", false).Status)

	// Past the bank TTL (60s) but inside the stale window (300s).
	now = writeTime.Add(120 * time.Second)
	healthy = false

	result := h.orch.GetAccount(context.Background(), "bnk-001", false)

	assert.Equal(t, domain.ResultUnavailable, result.Status)
	require.NotNil(t, result.Data)
	assert.True(t, result.Data.Stale)
	assert.True(t, result.Data.LastUpdated.Equal(writeTime))
	require.NotNil(t, result.Error)
	assert.Equal(t, domain.ErrCodeUpstream, result.Error.Code)
}

func TestGetAccountNotFoundSkipsStaleFallback(t *testing.T) {
	found := true
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank}
	bank.fetch = func(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
		if !found {
			return nil, domain.NotFoundError(accountID)
		}
		return okFetch(domain.TypeBank, "core-banking")(ctx, accountID)
	}
	h := setup(t, Options{}, bank)

	writeTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := writeTime
	h.cache.SetClock(func() time.Time { return now })

	require.Equal(t, domain.ResultOK, h.orch.GetAccount(context.Background(), "bnk-001", false).Status)

	now = writeTime.Add(120 * time.Second)
	found = false

	result := h.orch.GetAccount(context.Background(), "bnk-001", false)

	assert.Equal(t, domain.ResultNotFound, result.Status)
	assert.Nil(t, result.Data, "a confirmed deletion must not serve stale data")
	require.NotNil(t, result.Error)
	assert.Equal(t, domain.ErrCodeNotFound, result.Error.Code)
}

func TestGetAccountUnavailableWithoutCache(t *testing.T) {
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank}
	bank.fetch = func(context.Context, string) (*domain.AccountSummary, error) {
		return nil, domain.UpstreamError("core-banking", errors.New("boom"))
	}
	h := setup(t, Options{}, bank)

	result := h.orch.GetAccount(context.Background(), "bnk-404", false)

	assert.Equal(t, domain.ResultUnavailable, result.Status)
	assert.Nil(t, result.Data)
	require.NotNil(t, result.Error)
	assert.Equal(t, domain.ErrCodeUpstream, result.Error.Code)
}

func TestGetAccountFailsFastWhileBreakerOpen(t *testing.T) {
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank}
	bank.fetch = func(context.Context, string) (*domain.AccountSummary, error) {
		return nil, domain.UpstreamError("core-banking", errors.New("boom"))
	}
	h := setup(t, Options{}, bank)

	for i := 0; i < 5; i++ {
		h.orch.GetAccount(context.Background(), "bnk-001", false)
	}
	require.Equal(t, resilience.StateOpen, h.breakers.Get("core-banking").State())
	callsAtOpen := bank.calls.Load()

	result := h.orch.GetAccount(context.Background(), "bnk-001", false)

	assert.Equal(t, domain.ResultUnavailable, result.Status)
	require.NotNil(t, result.Error)
	assert.Equal(t, domain.ErrCodeCircuitOpen, result.Error.Code)
	assert.Equal(t, callsAtOpen, bank.calls.Load(), "open breaker must block network attempts")
}

func TestGetAccountPublishesAdapterCallEvents(t *testing.T) {
	bank := &fakeAdapter{name: "core-banking", accountType: domain.TypeBank, fetch: okFetch(domain.TypeBank, "core-banking")}
	h := setup(t, Options{}, bank)

	var mu sync.Mutex
	var seen []*events.AdapterCallData
	h.bus.Subscribe(events.AdapterCall, func(e *events.Event) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.Data.(*events.AdapterCallData))
	})

	h.orch.GetAccount(context.Background(), "bnk-001", false)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1)
	assert.Equal(t, "core-banking", seen[0].Backend)
	assert.True(t, seen[0].Success)
}
