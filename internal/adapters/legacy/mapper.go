package legacy

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/finbridge/aqs/internal/domain"
)

// The bridge emits one record per account:
//
//	ACCTNO,HOLDER,STATUS,CCY,AVAIL,LEDGER
//	05-00021,MUELLER H,A,EUR,1042.50,1042.50
//
// STATUS is a single mainframe code: A active, S suspended, C closed.
const recordFields = 6

// mapRecord canonicalizes one CSV record.
func mapRecord(record string) (*domain.AccountSummary, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(record)))
	fields, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	if len(fields) != recordFields {
		return nil, fmt.Errorf("record has %d fields, want %d", len(fields), recordFields)
	}

	avail, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return nil, fmt.Errorf("bad AVAIL field %q: %w", fields[4], err)
	}
	ledger, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return nil, fmt.Errorf("bad LEDGER field %q: %w", fields[5], err)
	}

	summary := &domain.AccountSummary{
		AccountID:   fields[0],
		AccountType: domain.TypeLegacy,
		Balances: []domain.Balance{{
			Currency:  fields[3],
			Available: avail,
			Ledger:    ledger,
		}},
		Status:        mapStatusCode(fields[2]),
		BackendSource: backendName,
		LastUpdated:   time.Now().UTC(),
	}
	if holder := strings.TrimSpace(fields[1]); holder != "" {
		summary.Owner = &domain.Owner{Name: holder}
	}
	return summary, nil
}

func mapStatusCode(code string) domain.AccountStatus {
	switch code {
	case "A":
		return domain.StatusActive
	case "S":
		return domain.StatusSuspended
	case "C":
		return domain.StatusClosed
	default:
		return domain.StatusUnknown
	}
}
