// Package domain defines the backend-agnostic account model shared by all layers.
// These types abstract away backend-specific implementations (core banking, card
// processor, loan book, etc.) so the orchestrator and cache never see raw payloads.
package domain

import "time"

// AccountType classifies an account and determines which adapter and cache TTL
// class applies. Immutable once set on a summary.
type AccountType string

const (
	TypeBank       AccountType = "bank"
	TypeCreditCard AccountType = "credit-card"
	TypeLoan       AccountType = "loan"
	TypeInvestment AccountType = "investment"
	TypeLegacy     AccountType = "legacy"
	TypeCrypto     AccountType = "crypto"
)

// AllAccountTypes lists every supported account type.
var AllAccountTypes = []AccountType{
	TypeBank,
	TypeCreditCard,
	TypeLoan,
	TypeInvestment,
	TypeLegacy,
	TypeCrypto,
}

// AccountStatus is the canonical lifecycle state of an account.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusSuspended AccountStatus = "suspended"
	StatusClosed    AccountStatus = "closed"
	StatusUnknown   AccountStatus = "unknown"
)

// Owner identifies the account holder.
type Owner struct {
	Name       string `json:"name,omitempty" msgpack:"name"`
	CustomerID string `json:"customerId,omitempty" msgpack:"customer_id"`
}

// Balance is one currency bucket of an account. Order is preserved as the
// backend reported it.
type Balance struct {
	Currency  string  `json:"currency" msgpack:"currency"`
	Available float64 `json:"available" msgpack:"available"`
	Ledger    float64 `json:"ledger" msgpack:"ledger"`
}

// AccountSummary is the canonical, backend-agnostic account representation.
// Mappers produce it, the cache stores it, the orchestrator hands it to the
// HTTP layer. Metadata is carried through opaquely and never interpreted here.
type AccountSummary struct {
	AccountID     string                 `json:"accountId" msgpack:"account_id"`
	AccountType   AccountType            `json:"accountType" msgpack:"account_type"`
	Owner         *Owner                 `json:"owner,omitempty" msgpack:"owner,omitempty"`
	DisplayName   string                 `json:"displayName,omitempty" msgpack:"display_name,omitempty"`
	Balances      []Balance              `json:"balances" msgpack:"balances"`
	Status        AccountStatus          `json:"status" msgpack:"status"`
	BackendSource string                 `json:"backendSource" msgpack:"backend_source"`
	LastUpdated   time.Time              `json:"lastUpdated" msgpack:"last_updated"`
	Stale         bool                   `json:"stale" msgpack:"stale"`
	Metadata      map[string]interface{} `json:"metadata,omitempty" msgpack:"metadata,omitempty"`
}

// Clone returns a deep-enough copy for the cache layer to mutate flags on
// without aliasing the stored value.
func (s *AccountSummary) Clone() *AccountSummary {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Owner != nil {
		owner := *s.Owner
		cp.Owner = &owner
	}
	if s.Balances != nil {
		cp.Balances = make([]Balance, len(s.Balances))
		copy(cp.Balances, s.Balances)
	}
	if s.Metadata != nil {
		cp.Metadata = make(map[string]interface{}, len(s.Metadata))
		for k, v := range s.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}
