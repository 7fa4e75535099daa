package registry

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/aqs/internal/domain"
)

// stubAdapter is a minimal adapter for registry tests.
type stubAdapter struct {
	domain.DefaultHealth
	name        string
	accountType domain.AccountType
}

func (s *stubAdapter) Name() string                    { return s.name }
func (s *stubAdapter) AccountType() domain.AccountType { return s.accountType }
func (s *stubAdapter) Profile() domain.RetryProfile    { return domain.RetryProfile{} }

func (s *stubAdapter) FetchSummary(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
	return nil, domain.NotFoundError(accountID)
}

func TestRegisterAndLookup(t *testing.T) {
	reg := New(zerolog.Nop())

	reg.Register(&stubAdapter{name: "core-banking", accountType: domain.TypeBank})

	adapter, ok := reg.Lookup(domain.TypeBank)
	require.True(t, ok)
	assert.Equal(t, "core-banking", adapter.Name())
}

func TestLookupMissing(t *testing.T) {
	reg := New(zerolog.Nop())

	_, ok := reg.Lookup(domain.TypeCrypto)
	assert.False(t, ok)
}

func TestRegisterLastWins(t *testing.T) {
	reg := New(zerolog.Nop())

	reg.Register(&stubAdapter{name: "loans-v1", accountType: domain.TypeLoan})
	reg.Register(&stubAdapter{name: "loans-v2", accountType: domain.TypeLoan})

	adapter, ok := reg.Lookup(domain.TypeLoan)
	require.True(t, ok)
	assert.Equal(t, "loans-v2", adapter.Name())
}

func TestAll(t *testing.T) {
	reg := New(zerolog.Nop())
	reg.Register(&stubAdapter{name: "core-banking", accountType: domain.TypeBank})
	reg.Register(&stubAdapter{name: "wallet-gw", accountType: domain.TypeCrypto})

	assert.Len(t, reg.All(), 2)
}
