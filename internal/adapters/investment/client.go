// Package investment provides the adapter for the brokerage backend.
package investment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/domain"
)

const backendName = "brokerage"

// Adapter fetches portfolio account summaries from the brokerage API.
type Adapter struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a brokerage adapter.
func New(baseURL, apiKey, apiSecret string, log zerolog.Logger) *Adapter {
	return &Adapter{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: 6 * time.Second},
		log:        log.With().Str("client", backendName).Logger(),
	}
}

// Name implements domain.BackendAdapter.
func (a *Adapter) Name() string { return backendName }

// AccountType implements domain.BackendAdapter.
func (a *Adapter) AccountType() domain.AccountType { return domain.TypeInvestment }

// Profile implements domain.BackendAdapter.
func (a *Adapter) Profile() domain.RetryProfile {
	return domain.RetryProfile{
		Timeout: 1000 * time.Millisecond,
		Retries: 2,
		Backoff: 150 * time.Millisecond,
	}
}

// FetchSummary retrieves one portfolio account and canonicalizes it.
func (a *Adapter) FetchSummary(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
	url := fmt.Sprintf("%s/v1/portfolios/%s", a.baseURL, accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.UpstreamError(backendName, err)
	}
	req.Header.Set("X-Api-Key", a.apiKey)
	req.Header.Set("X-Api-Secret", a.apiSecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, domain.UpstreamError(backendName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NotFoundError(accountID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.UpstreamError(backendName, fmt.Errorf("status %d", resp.StatusCode))
	}

	var raw portfolioPayload
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, domain.UpstreamError(backendName, fmt.Errorf("failed to parse response: %w", err))
	}

	summary, err := mapPortfolio(&raw)
	if err != nil {
		return nil, domain.UpstreamError(backendName, err)
	}
	return summary, nil
}

// HealthCheck probes the brokerage status endpoint.
func (a *Adapter) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v1/status", nil)
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
