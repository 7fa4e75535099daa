// Package bank provides the adapter for the core-banking backend, the system
// of record for current and savings accounts.
package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/domain"
)

const backendName = "core-banking"

// Adapter fetches account summaries from the core-banking REST API.
type Adapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a core-banking adapter.
func New(baseURL, apiKey string, log zerolog.Logger) *Adapter {
	return &Adapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			// The resilience policy bounds each attempt; this is a hard
			// backstop in case a caller skips the policy.
			Timeout: 5 * time.Second,
		},
		log: log.With().Str("client", backendName).Logger(),
	}
}

// Name implements domain.BackendAdapter.
func (a *Adapter) Name() string { return backendName }

// AccountType implements domain.BackendAdapter.
func (a *Adapter) AccountType() domain.AccountType { return domain.TypeBank }

// Profile implements domain.BackendAdapter. The core is fast and reliable.
func (a *Adapter) Profile() domain.RetryProfile {
	return domain.RetryProfile{
		Timeout: 800 * time.Millisecond,
		Retries: 2,
		Backoff: 100 * time.Millisecond,
	}
}

// FetchSummary retrieves one account from the core and canonicalizes it.
func (a *Adapter) FetchSummary(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
	url := fmt.Sprintf("%s/v2/accounts/%s", a.baseURL, accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.UpstreamError(backendName, err)
	}
	req.Header.Set("X-Api-Key", a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, domain.UpstreamError(backendName, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.NotFoundError(accountID)
	case resp.StatusCode != http.StatusOK:
		return nil, domain.UpstreamError(backendName, fmt.Errorf("status %d", resp.StatusCode))
	}

	var raw accountPayload
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, domain.UpstreamError(backendName, fmt.Errorf("failed to parse response: %w", err))
	}

	summary, err := mapAccount(&raw)
	if err != nil {
		return nil, domain.UpstreamError(backendName, err)
	}
	return summary, nil
}

// HealthCheck probes the core's health endpoint. Never errors - any failure
// collapses to false.
func (a *Adapter) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v2/health", nil)
	if err != nil {
		return false
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.log.Debug().Err(err).Msg("Health check failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
