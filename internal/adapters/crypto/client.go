// Package crypto provides the adapter for the custody wallet gateway.
package crypto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/domain"
)

const backendName = "wallet-gateway"

// Adapter fetches wallet summaries from the custody gateway.
type Adapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a wallet-gateway adapter.
func New(baseURL, apiKey string, log zerolog.Logger) *Adapter {
	return &Adapter{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 4 * time.Second},
		log:        log.With().Str("client", backendName).Logger(),
	}
}

// Name implements domain.BackendAdapter.
func (a *Adapter) Name() string { return backendName }

// AccountType implements domain.BackendAdapter.
func (a *Adapter) AccountType() domain.AccountType { return domain.TypeCrypto }

// Profile implements domain.BackendAdapter. The gateway is the fastest
// backend; a single retry is enough.
func (a *Adapter) Profile() domain.RetryProfile {
	return domain.RetryProfile{
		Timeout: 500 * time.Millisecond,
		Retries: 1,
		Backoff: 50 * time.Millisecond,
	}
}

// FetchSummary retrieves one wallet and canonicalizes it.
func (a *Adapter) FetchSummary(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
	url := fmt.Sprintf("%s/wallets/%s", a.baseURL, accountID)

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

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NotFoundError(accountID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.UpstreamError(backendName, fmt.Errorf("status %d", resp.StatusCode))
	}

	var raw walletPayload
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, domain.UpstreamError(backendName, fmt.Errorf("failed to parse response: %w", err))
	}

	summary, err := mapWallet(accountID, &raw)
	if err != nil {
		return nil, domain.UpstreamError(backendName, err)
	}
	return summary, nil
}

// HealthCheck probes the gateway's ping endpoint.
func (a *Adapter) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/ping", nil)
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
