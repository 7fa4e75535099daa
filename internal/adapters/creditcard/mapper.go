package creditcard

import (
	"fmt"
	"time"

	"github.com/finbridge/aqs/internal/domain"
)

// cardPayload is the processor's summary wire shape. The processor reports
// one credit line per account; it becomes the single balance entry.
type cardPayload struct {
	CardAccount struct {
		ID         string `json:"id"`
		Display    string `json:"display"`
		StatusCode int    `json:"status_code"` // 1 active, 2 frozen, 3 cancelled
	} `json:"card_account"`
	Cardholder struct {
		Name       string `json:"name"`
		CustomerID string `json:"customer_id"`
	} `json:"cardholder"`
	Credit struct {
		Currency  string  `json:"currency"`
		Limit     float64 `json:"limit"`
		Available float64 `json:"available"`
		Balance   float64 `json:"balance"` // amount owed, positive
	} `json:"credit"`
}

// mapCard canonicalizes a processor payload. The ledger balance is the
// negated amount owed so card debt reads like any other liability.
func mapCard(raw *cardPayload) (*domain.AccountSummary, error) {
	if raw.CardAccount.ID == "" {
		return nil, fmt.Errorf("payload missing card_account.id")
	}

	return &domain.AccountSummary{
		AccountID:   raw.CardAccount.ID,
		AccountType: domain.TypeCreditCard,
		DisplayName: raw.CardAccount.Display,
		Owner: &domain.Owner{
			Name:       raw.Cardholder.Name,
			CustomerID: raw.Cardholder.CustomerID,
		},
		Balances: []domain.Balance{{
			Currency:  raw.Credit.Currency,
			Available: raw.Credit.Available,
			Ledger:    -raw.Credit.Balance,
		}},
		Status:        mapStatusCode(raw.CardAccount.StatusCode),
		BackendSource: backendName,
		LastUpdated:   time.Now().UTC(),
		Metadata: map[string]interface{}{
			"credit_limit": raw.Credit.Limit,
		},
	}, nil
}

func mapStatusCode(code int) domain.AccountStatus {
	switch code {
	case 1:
		return domain.StatusActive
	case 2:
		return domain.StatusSuspended
	case 3:
		return domain.StatusClosed
	default:
		return domain.StatusUnknown
	}
}
