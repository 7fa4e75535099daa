package cache

import (
	"time"

	"github.com/finbridge/aqs/internal/domain"
)

// TTLClass is the two-tier freshness policy for one account type: entries are
// fresh for TTL, then stale-but-usable for StaleWindow more, then expired.
type TTLClass struct {
	TTL         time.Duration
	StaleWindow time.Duration
}

// ttlClasses assigns freshness windows per account type. Fast-moving types
// get short windows, slow-moving ones keep entries usable for longer.
var ttlClasses = map[domain.AccountType]TTLClass{
	domain.TypeCrypto:     {TTL: 30 * time.Second, StaleWindow: 180 * time.Second},
	domain.TypeBank:       {TTL: 60 * time.Second, StaleWindow: 300 * time.Second},
	domain.TypeCreditCard: {TTL: 60 * time.Second, StaleWindow: 300 * time.Second},
	domain.TypeInvestment: {TTL: 90 * time.Second, StaleWindow: 420 * time.Second},
	domain.TypeLegacy:     {TTL: 120 * time.Second, StaleWindow: 600 * time.Second},
	domain.TypeLoan:       {TTL: 120 * time.Second, StaleWindow: 600 * time.Second},
}

// defaultClass covers any account type missing from the table.
var defaultClass = TTLClass{TTL: 60 * time.Second, StaleWindow: 300 * time.Second}

// ClassFor returns the TTL class for an account type.
func ClassFor(accountType domain.AccountType) TTLClass {
	if class, ok := ttlClasses[accountType]; ok {
		return class
	}
	return defaultClass
}
