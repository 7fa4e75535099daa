// Package legacy provides the adapter for the mainframe bridge, the gateway
// in front of the pre-migration core. The bridge answers in CSV and is by far
// the slowest backend in the estate, so it gets the most generous retry
// profile.
package legacy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/domain"
)

const backendName = "mainframe-bridge"

// Adapter fetches account records through the mainframe bridge.
type Adapter struct {
	domain.DefaultHealth // the bridge exposes no probe endpoint

	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a mainframe-bridge adapter.
func New(baseURL, username, password string, log zerolog.Logger) *Adapter {
	return &Adapter{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("client", backendName).Logger(),
	}
}

// Name implements domain.BackendAdapter.
func (a *Adapter) Name() string { return backendName }

// AccountType implements domain.BackendAdapter.
func (a *Adapter) AccountType() domain.AccountType { return domain.TypeLegacy }

// Profile implements domain.BackendAdapter. A known-slow system: long
// per-attempt timeout and an extra retry compared to the modern backends.
func (a *Adapter) Profile() domain.RetryProfile {
	return domain.RetryProfile{
		Timeout: 2500 * time.Millisecond,
		Retries: 3,
		Backoff: 250 * time.Millisecond,
	}
}

// FetchSummary retrieves one record from the bridge and canonicalizes it.
// The bridge returns a single CSV record; an empty body means the account
// number is unknown to the mainframe.
func (a *Adapter) FetchSummary(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
	url := fmt.Sprintf("%s/bridge/account?acctno=%s&fmt=csv", a.baseURL, accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.UpstreamError(backendName, err)
	}
	req.SetBasicAuth(a.username, a.password)

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

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.UpstreamError(backendName, fmt.Errorf("failed to read response: %w", err))
	}
	if len(body) == 0 {
		return nil, domain.NotFoundError(accountID)
	}

	summary, err := mapRecord(string(body))
	if err != nil {
		return nil, domain.UpstreamError(backendName, err)
	}
	return summary, nil
}
