package investment

import (
	"fmt"
	"time"

	"github.com/finbridge/aqs/internal/domain"
)

// portfolioPayload is the brokerage wire shape. Cash buckets become balance
// entries; the positions valuation rides along in metadata since the
// canonical model has no holdings concept.
type portfolioPayload struct {
	Portfolio struct {
		AccountID string `json:"account_id"`
		Label     string `json:"label"`
		OwnerName string `json:"owner_name"`
		OwnerRef  string `json:"owner_ref"`
		Suspended bool   `json:"suspended"`
		Closed    bool   `json:"closed"`
	} `json:"portfolio"`
	CashBalances []struct {
		Currency string  `json:"currency"`
		Free     float64 `json:"free"`
		Total    float64 `json:"total"`
	} `json:"cash_balances"`
	PositionsValue float64 `json:"positions_value"`
	ValuationCcy   string  `json:"valuation_ccy"`
}

// mapPortfolio canonicalizes a brokerage payload.
func mapPortfolio(raw *portfolioPayload) (*domain.AccountSummary, error) {
	if raw.Portfolio.AccountID == "" {
		return nil, fmt.Errorf("payload missing portfolio.account_id")
	}

	balances := make([]domain.Balance, 0, len(raw.CashBalances))
	for _, b := range raw.CashBalances {
		balances = append(balances, domain.Balance{
			Currency:  b.Currency,
			Available: b.Free,
			Ledger:    b.Total,
		})
	}

	status := domain.StatusActive
	switch {
	case raw.Portfolio.Closed:
		status = domain.StatusClosed
	case raw.Portfolio.Suspended:
		status = domain.StatusSuspended
	}

	return &domain.AccountSummary{
		AccountID:   raw.Portfolio.AccountID,
		AccountType: domain.TypeInvestment,
		DisplayName: raw.Portfolio.Label,
		Owner: &domain.Owner{
			Name:       raw.Portfolio.OwnerName,
			CustomerID: raw.Portfolio.OwnerRef,
		},
		Balances:      balances,
		Status:        status,
		BackendSource: backendName,
		LastUpdated:   time.Now().UTC(),
		Metadata: map[string]interface{}{
			"positions_value": raw.PositionsValue,
			"valuation_ccy":   raw.ValuationCcy,
		},
	}, nil
}
