package bank

import (
	"fmt"
	"time"

	"github.com/finbridge/aqs/internal/domain"
)

// accountPayload is the core-banking v2 wire shape.
type accountPayload struct {
	AccountNumber string `json:"account_number"`
	ProductName   string `json:"product_name"`
	State         string `json:"state"` // OPEN, BLOCKED, CLOSED
	Holder        struct {
		FullName    string `json:"full_name"`
		CustomerRef string `json:"customer_ref"`
	} `json:"holder"`
	Balances []struct {
		Ccy    string  `json:"ccy"`
		Avail  float64 `json:"avail"`
		Booked float64 `json:"booked"`
	} `json:"balances"`
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// mapAccount canonicalizes a core-banking payload. Pure; any validation
// failure is an adapter failure.
func mapAccount(raw *accountPayload) (*domain.AccountSummary, error) {
	if raw.AccountNumber == "" {
		return nil, fmt.Errorf("payload missing account_number")
	}

	balances := make([]domain.Balance, 0, len(raw.Balances))
	for _, b := range raw.Balances {
		balances = append(balances, domain.Balance{
			Currency:  b.Ccy,
			Available: b.Avail,
			Ledger:    b.Booked,
		})
	}

	summary := &domain.AccountSummary{
		AccountID:     raw.AccountNumber,
		AccountType:   domain.TypeBank,
		DisplayName:   raw.ProductName,
		Balances:      balances,
		Status:        mapState(raw.State),
		BackendSource: backendName,
		LastUpdated:   time.Now().UTC(),
		Metadata:      raw.Extra,
	}
	if raw.Holder.FullName != "" || raw.Holder.CustomerRef != "" {
		summary.Owner = &domain.Owner{
			Name:       raw.Holder.FullName,
			CustomerID: raw.Holder.CustomerRef,
		}
	}
	return summary, nil
}

func mapState(state string) domain.AccountStatus {
	switch state {
	case "OPEN":
		return domain.StatusActive
	case "BLOCKED":
		return domain.StatusSuspended
	case "CLOSED":
		return domain.StatusClosed
	default:
		return domain.StatusUnknown
	}
}
