package loan

import (
	"fmt"
	"time"

	"github.com/finbridge/aqs/internal/domain"
)

// loanPayload is the loan servicing wire shape.
type loanPayload struct {
	LoanID      string  `json:"loanId"`
	ProductName string  `json:"productName"`
	Borrower    string  `json:"borrower"`
	BorrowerID  string  `json:"borrowerId"`
	Currency    string  `json:"currency"`
	Outstanding float64 `json:"principalOutstanding"`
	NextDue     string  `json:"nextPaymentDue,omitempty"`
	Status      string  `json:"status"` // current, arrears, settled
}

// mapLoan canonicalizes a loan payload. Nothing is drawable on a loan, so
// available is zero and the ledger carries the negated outstanding principal.
func mapLoan(raw *loanPayload) (*domain.AccountSummary, error) {
	if raw.LoanID == "" {
		return nil, fmt.Errorf("payload missing loanId")
	}

	summary := &domain.AccountSummary{
		AccountID:   raw.LoanID,
		AccountType: domain.TypeLoan,
		DisplayName: raw.ProductName,
		Owner: &domain.Owner{
			Name:       raw.Borrower,
			CustomerID: raw.BorrowerID,
		},
		Balances: []domain.Balance{{
			Currency:  raw.Currency,
			Available: 0,
			Ledger:    -raw.Outstanding,
		}},
		Status:        mapLoanStatus(raw.Status),
		BackendSource: backendName,
		LastUpdated:   time.Now().UTC(),
	}
	if raw.NextDue != "" {
		summary.Metadata = map[string]interface{}{"next_payment_due": raw.NextDue}
	}
	return summary, nil
}

func mapLoanStatus(status string) domain.AccountStatus {
	switch status {
	case "current", "arrears":
		// Arrears is still an open, serviced loan.
		return domain.StatusActive
	case "settled":
		return domain.StatusClosed
	default:
		return domain.StatusUnknown
	}
}
