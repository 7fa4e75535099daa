package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finbridge/aqs/internal/domain"
)

func TestRouteAccountType_CurrentConvention(t *testing.T) {
	tests := []struct {
		accountID string
		expected  domain.AccountType
	}{
		{"bnk-1042", domain.TypeBank},
		{"crd-88102", domain.TypeCreditCard},
		{"lon-3300", domain.TypeLoan},
		{"inv-7001", domain.TypeInvestment},
		{"lgc-000188", domain.TypeLegacy},
		{"cry-wallet-9", domain.TypeCrypto},
	}

	for _, tt := range tests {
		t.Run(tt.accountID, func(t *testing.T) {
			assert.Equal(t, tt.expected, RouteAccountType(tt.accountID))
		})
	}
}

func TestRouteAccountType_LegacyConvention(t *testing.T) {
	tests := []struct {
		accountID string
		expected  domain.AccountType
	}{
		{"01-99410", domain.TypeBank},
		{"02-99441", domain.TypeCreditCard},
		{"03-11209", domain.TypeLoan},
		{"04-55010", domain.TypeInvestment},
		{"05-00021", domain.TypeLegacy},
		{"06-31337", domain.TypeCrypto},
	}

	for _, tt := range tests {
		t.Run(tt.accountID, func(t *testing.T) {
			assert.Equal(t, tt.expected, RouteAccountType(tt.accountID))
		})
	}
}

func TestRouteAccountType_CaseInsensitive(t *testing.T) {
	assert.Equal(t, domain.TypeCreditCard, RouteAccountType("CRD-88102"))
	assert.Equal(t, domain.TypeCrypto, RouteAccountType("Cry-wallet"))
}

func TestRouteAccountType_FallbackToBank(t *testing.T) {
	// Unrecognized prefixes route permissively to bank.
	for _, id := range []string{"xyz-123", "99-000", "", "bank-1", "crd"} {
		assert.Equal(t, domain.TypeBank, RouteAccountType(id), "id=%s", id)
	}
}
