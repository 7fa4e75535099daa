package investment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/aqs/internal/domain"
)

func TestMapPortfolio(t *testing.T) {
	raw := &portfolioPayload{}
	raw.Portfolio.AccountID = "inv-90233"
	raw.Portfolio.Label = "Growth Portfolio"
	raw.Portfolio.OwnerName = "J. Doe"
	raw.Portfolio.OwnerRef = "cust-12"
	raw.CashBalances = []struct {
		Currency string  `json:"currency"`
		Free     float64 `json:"free"`
		Total    float64 `json:"total"`
	}{
		{Currency: "EUR", Free: 1200, Total: 1500},
		{Currency: "USD", Free: 300, Total: 300},
	}
	raw.PositionsValue = 48200.75
	raw.ValuationCcy = "EUR"

	summary, err := mapPortfolio(raw)
	require.NoError(t, err)

	assert.Equal(t, "inv-90233", summary.AccountID)
	assert.Equal(t, domain.TypeInvestment, summary.AccountType)
	assert.Equal(t, domain.StatusActive, summary.Status)
	require.Len(t, summary.Balances, 2)
	assert.Equal(t, "EUR", summary.Balances[0].Currency)
	assert.Equal(t, 1200.0, summary.Balances[0].Available)
	assert.Equal(t, 48200.75, summary.Metadata["positions_value"])
}

func TestMapPortfolio_SuspendedAndClosed(t *testing.T) {
	raw := &portfolioPayload{}
	raw.Portfolio.AccountID = "inv-1"
	raw.Portfolio.Suspended = true

	summary, err := mapPortfolio(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuspended, summary.Status)

	// Closed wins over suspended.
	raw.Portfolio.Closed = true
	summary, err = mapPortfolio(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, summary.Status)
}

func TestMapPortfolio_MissingID(t *testing.T) {
	_, err := mapPortfolio(&portfolioPayload{})
	assert.Error(t, err)
}
