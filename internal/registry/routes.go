package registry

import (
	"strings"

	"github.com/finbridge/aqs/internal/domain"
)

// prefixRoute binds an identifier prefix to an account type.
type prefixRoute struct {
	prefix      string
	accountType domain.AccountType
}

// routeTable is checked in order, first match wins. Two conventions coexist for
// backward compatibility: the current scheme uses three-letter tags
// ("bnk-1042"), the legacy core emits bare numeric identifiers with a
// two-digit system code ("02-99441"). New entries are checked first so a
// migrated identifier never falls through to its legacy interpretation.
var routeTable = []prefixRoute{
	// Current convention
	{"bnk-", domain.TypeBank},
	{"crd-", domain.TypeCreditCard},
	{"lon-", domain.TypeLoan},
	{"inv-", domain.TypeInvestment},
	{"lgc-", domain.TypeLegacy},
	{"cry-", domain.TypeCrypto},
	// Legacy convention
	{"01-", domain.TypeBank},
	{"02-", domain.TypeCreditCard},
	{"03-", domain.TypeLoan},
	{"04-", domain.TypeInvestment},
	{"05-", domain.TypeLegacy},
	{"06-", domain.TypeCrypto},
}

// RouteAccountType inspects an identifier's prefix against the fixed ordered
// table and returns the matching account type. Identifiers that match nothing
// route to bank - a deliberate permissive default, not an error; callers that
// need strict typing validate the identifier shape upstream.
func RouteAccountType(accountID string) domain.AccountType {
	id := strings.ToLower(accountID)
	for _, route := range routeTable {
		if strings.HasPrefix(id, route.prefix) {
			return route.accountType
		}
	}
	return domain.TypeBank
}
