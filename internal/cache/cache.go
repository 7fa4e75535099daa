package cache

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/domain"
)

// KeyPrefix is the fixed cache key prefix. An identifier maps to exactly one
// account type, so the key carries no type segment.
const KeyPrefix = "aqs:account:"

// Key builds the cache key for an account identifier.
func Key(accountID string) string {
	return KeyPrefix + accountID
}

// Hit classifies the outcome of a cache read.
type Hit int

const (
	// Miss - no usable entry.
	Miss Hit = iota
	// HitFresh - entry within its TTL, returned as-is.
	HitFresh
	// HitStale - entry past TTL but within the stale window, returned with
	// the stale flag set.
	HitStale
)

// SummaryCache serves account summaries under the two-tier freshness policy.
// Every operation is best-effort: storage failures downgrade to a miss or
// no-op and are logged, never surfaced - the cache is an optimization, not a
// dependency.
type SummaryCache struct {
	store *Store
	now   func() time.Time
	log   zerolog.Logger
}

// New creates a summary cache over the given store.
func New(store *Store, log zerolog.Logger) *SummaryCache {
	return &SummaryCache{
		store: store,
		now:   time.Now,
		log:   log.With().Str("component", "summary_cache").Logger(),
	}
}

// SetClock overrides the cache's clock. Used by tests.
func (c *SummaryCache) SetClock(now func() time.Time) {
	c.now = now
}

// Get looks up an account summary. A fresh entry is returned as-is; a stale
// one comes back with Stale set and LastUpdated rewritten to the original
// write time; an expired entry is a miss even if the row still exists.
func (c *SummaryCache) Get(accountID string) (*domain.AccountSummary, Hit) {
	entry, err := c.store.Get(Key(accountID))
	if err != nil {
		c.log.Warn().Err(err).Str("account_id", accountID).Msg("Cache read failed, treating as miss")
		return nil, Miss
	}
	if entry == nil {
		return nil, Miss
	}

	class := ClassFor(entry.Summary.AccountType)
	switch Evaluate(c.now(), entry.CachedAt, class) {
	case Fresh:
		return entry.Summary, HitFresh
	case Stale:
		stale := entry.Summary.Clone()
		stale.Stale = true
		stale.LastUpdated = entry.CachedAt
		return stale, HitStale
	default:
		return nil, Miss
	}
}

// Set unconditionally overwrites the entry for a summary's account. The
// storage TTL is ttl+staleWindow for the summary's type so expired-but-within-
// window entries remain retrievable.
func (c *SummaryCache) Set(summary *domain.AccountSummary) {
	class := ClassFor(summary.AccountType)
	now := c.now()
	expiresAt := now.Add(class.TTL + class.StaleWindow)

	if err := c.store.Put(Key(summary.AccountID), summary, now, expiresAt); err != nil {
		c.log.Warn().Err(err).Str("account_id", summary.AccountID).Msg("Cache write failed, continuing without")
	}
}

// Invalidate removes one account's entry. Operator tooling only, not part of
// the request-serving hot path.
func (c *SummaryCache) Invalidate(accountID string) error {
	return c.store.Delete(Key(accountID))
}

// InvalidateAll removes every entry.
func (c *SummaryCache) InvalidateAll() error {
	return c.store.DeleteAll()
}

// Count reports the number of stored entries.
func (c *SummaryCache) Count() int64 {
	n, err := c.store.Count()
	if err != nil {
		c.log.Warn().Err(err).Msg("Cache count failed")
		return 0
	}
	return n
}

// DeleteExpired removes rows past their storage expiry.
func (c *SummaryCache) DeleteExpired() (int64, error) {
	return c.store.DeleteExpired(c.now())
}
