package creditcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/aqs/internal/domain"
)

func TestMapCard(t *testing.T) {
	raw := &cardPayload{}
	raw.CardAccount.ID = "crd-88102"
	raw.CardAccount.Display = "Platinum Card"
	raw.CardAccount.StatusCode = 1
	raw.Cardholder.Name = "J. Doe"
	raw.Cardholder.CustomerID = "cust-12"
	raw.Credit.Currency = "EUR"
	raw.Credit.Limit = 5000
	raw.Credit.Available = 4100
	raw.Credit.Balance = 900

	summary, err := mapCard(raw)
	require.NoError(t, err)

	assert.Equal(t, "crd-88102", summary.AccountID)
	assert.Equal(t, domain.TypeCreditCard, summary.AccountType)
	assert.Equal(t, domain.StatusActive, summary.Status)
	require.Len(t, summary.Balances, 1)
	// Card debt reads as a negative ledger balance.
	assert.Equal(t, -900.0, summary.Balances[0].Ledger)
	assert.Equal(t, 4100.0, summary.Balances[0].Available)
	assert.Equal(t, 5000.0, summary.Metadata["credit_limit"])
}

func TestMapCard_MissingID(t *testing.T) {
	_, err := mapCard(&cardPayload{})
	assert.Error(t, err)
}

func TestMapStatusCode(t *testing.T) {
	assert.Equal(t, domain.StatusActive, mapStatusCode(1))
	assert.Equal(t, domain.StatusSuspended, mapStatusCode(2))
	assert.Equal(t, domain.StatusClosed, mapStatusCode(3))
	assert.Equal(t, domain.StatusUnknown, mapStatusCode(99))
}
