// Package creditcard provides the adapter for the card-processor backend.
package creditcard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/domain"
)

const backendName = "card-processor"

// Adapter fetches card account summaries from the processor's API.
type Adapter struct {
	baseURL    string
	bearer     string
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a card-processor adapter.
func New(baseURL, bearerToken string, log zerolog.Logger) *Adapter {
	return &Adapter{
		baseURL:    baseURL,
		bearer:     bearerToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		log:        log.With().Str("client", backendName).Logger(),
	}
}

// Name implements domain.BackendAdapter.
func (a *Adapter) Name() string { return backendName }

// AccountType implements domain.BackendAdapter.
func (a *Adapter) AccountType() domain.AccountType { return domain.TypeCreditCard }

// Profile implements domain.BackendAdapter.
func (a *Adapter) Profile() domain.RetryProfile {
	return domain.RetryProfile{
		Timeout: 800 * time.Millisecond,
		Retries: 2,
		Backoff: 100 * time.Millisecond,
	}
}

// FetchSummary retrieves one card account and canonicalizes it.
func (a *Adapter) FetchSummary(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
	url := fmt.Sprintf("%s/cards/accounts/%s/summary", a.baseURL, accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.UpstreamError(backendName, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.bearer)

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

	var raw cardPayload
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, domain.UpstreamError(backendName, fmt.Errorf("failed to parse response: %w", err))
	}

	summary, err := mapCard(&raw)
	if err != nil {
		return nil, domain.UpstreamError(backendName, err)
	}
	return summary, nil
}

// HealthCheck probes the processor's status endpoint.
func (a *Adapter) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/status", nil)
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
