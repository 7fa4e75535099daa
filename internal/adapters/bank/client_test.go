package bank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/aqs/internal/domain"
)

const accountJSON = `{
	"account_number": "bnk-1042",
	"product_name": "Everyday Account",
	"state": "OPEN",
	"holder": {"full_name": "H. Mueller", "customer_ref": "cust-77"},
	"balances": [
		{"ccy": "EUR", "avail": 120.50, "booked": 140.00},
		{"ccy": "USD", "avail": 10.00, "booked": 10.00}
	],
	"extra": {"iban": "DE02120300000000202051"}
}`

func TestFetchSummary_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v2/accounts/bnk-1042", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(accountJSON))
	}))
	defer server.Close()

	adapter := New(server.URL, "secret", zerolog.Nop())

	summary, err := adapter.FetchSummary(context.Background(), "bnk-1042")
	require.NoError(t, err)

	assert.Equal(t, "bnk-1042", summary.AccountID)
	assert.Equal(t, domain.TypeBank, summary.AccountType)
	assert.Equal(t, "core-banking", summary.BackendSource)
	assert.Equal(t, domain.StatusActive, summary.Status)
	assert.Equal(t, "Everyday Account", summary.DisplayName)
	require.NotNil(t, summary.Owner)
	assert.Equal(t, "H. Mueller", summary.Owner.Name)
	// Balance ordering follows the backend.
	require.Len(t, summary.Balances, 2)
	assert.Equal(t, "EUR", summary.Balances[0].Currency)
	assert.Equal(t, 120.50, summary.Balances[0].Available)
	assert.Equal(t, 140.00, summary.Balances[0].Ledger)
	assert.Equal(t, "DE02120300000000202051", summary.Metadata["iban"])
}

func TestFetchSummary_NotFoundIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := New(server.URL, "secret", zerolog.Nop())

	_, err := adapter.FetchSummary(context.Background(), "bnk-missing")
	require.Error(t, err)

	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, domain.ErrCodeNotFound, be.Code)
	assert.False(t, be.Retryable)
}

func TestFetchSummary_ServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := New(server.URL, "secret", zerolog.Nop())

	_, err := adapter.FetchSummary(context.Background(), "bnk-1042")
	require.Error(t, err)

	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, domain.ErrCodeUpstream, be.Code)
	assert.True(t, be.Retryable)
}

func TestFetchSummary_MalformedPayloadIsAdapterFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"account_number": ""}`))
	}))
	defer server.Close()

	adapter := New(server.URL, "secret", zerolog.Nop())

	_, err := adapter.FetchSummary(context.Background(), "bnk-1042")
	require.Error(t, err)

	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, domain.ErrCodeUpstream, be.Code)
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := New(server.URL, "secret", zerolog.Nop())
	assert.True(t, adapter.HealthCheck(context.Background()))

	server.Close()
	assert.False(t, adapter.HealthCheck(context.Background()))
}

func TestMapState(t *testing.T) {
	assert.Equal(t, domain.StatusActive, mapState("OPEN"))
	assert.Equal(t, domain.StatusSuspended, mapState("BLOCKED"))
	assert.Equal(t, domain.StatusClosed, mapState("CLOSED"))
	assert.Equal(t, domain.StatusUnknown, mapState("???"))
}
