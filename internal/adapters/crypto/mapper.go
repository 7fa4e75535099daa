package crypto

import (
	"fmt"
	"sort"
	"time"

	"github.com/finbridge/aqs/internal/domain"
)

// walletPayload is the custody gateway wire shape. Balances arrive keyed by
// asset symbol; the map is flattened into a sorted balance list so the
// canonical ordering is deterministic.
type walletPayload struct {
	Wallet struct {
		Address string `json:"address"`
		Label   string `json:"label"`
	} `json:"wallet"`
	Balances map[string]struct {
		Available float64 `json:"available"`
		Total     float64 `json:"total"`
	} `json:"balances"`
	Frozen bool `json:"frozen"`
}

// mapWallet canonicalizes a wallet payload. The gateway does not echo the
// account identifier, so the requested one is carried through.
func mapWallet(accountID string, raw *walletPayload) (*domain.AccountSummary, error) {
	if raw.Wallet.Address == "" {
		return nil, fmt.Errorf("payload missing wallet.address")
	}

	symbols := make([]string, 0, len(raw.Balances))
	for symbol := range raw.Balances {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	balances := make([]domain.Balance, 0, len(symbols))
	for _, symbol := range symbols {
		b := raw.Balances[symbol]
		balances = append(balances, domain.Balance{
			Currency:  symbol,
			Available: b.Available,
			Ledger:    b.Total,
		})
	}

	status := domain.StatusActive
	if raw.Frozen {
		status = domain.StatusSuspended
	}

	return &domain.AccountSummary{
		AccountID:     accountID,
		AccountType:   domain.TypeCrypto,
		DisplayName:   raw.Wallet.Label,
		Balances:      balances,
		Status:        status,
		BackendSource: backendName,
		LastUpdated:   time.Now().UTC(),
		Metadata: map[string]interface{}{
			"wallet_address": raw.Wallet.Address,
		},
	}, nil
}
