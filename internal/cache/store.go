// Package cache stores the most recently known-good account summary per
// identifier and serves it under a two-tier freshness policy. All data lives
// as msgpack blobs with expiration timestamps in the cache database.
package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/finbridge/aqs/internal/database"
	"github.com/finbridge/aqs/internal/domain"
)

// Schema is the cache database schema, applied at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS account_summaries (
    key        TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    cached_at  INTEGER NOT NULL,
    expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_account_summaries_expires ON account_summaries(expires_at);
`

// Entry wraps a stored summary with its write time. Staleness is derived at
// read time, never stored.
type Entry struct {
	Summary  *domain.AccountSummary
	CachedAt time.Time
}

// Store provides raw row operations on the account_summaries table.
type Store struct {
	db *database.DB
}

// NewStore creates a store and ensures the schema exists.
func NewStore(db *database.DB) (*Store, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("failed to apply cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Put upserts an entry. The storage expiry is the logical expiry
// (ttl + staleWindow) so within-window rows remain retrievable after their
// fresh TTL lapses.
func (s *Store) Put(key string, summary *domain.AccountSummary, cachedAt, expiresAt time.Time) error {
	blob, err := msgpack.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO account_summaries (key, data, cached_at, expires_at) VALUES (?, ?, ?, ?)",
		key, blob, cachedAt.Unix(), expiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store summary for %s: %w", key, err)
	}
	return nil
}

// Get returns the entry for a key regardless of its expiration status; the
// caller derives freshness. Returns (nil, nil) when the key is absent.
func (s *Store) Get(key string) (*Entry, error) {
	var blob []byte
	var cachedAt int64

	err := s.db.QueryRow(
		"SELECT data, cached_at FROM account_summaries WHERE key = ?", key,
	).Scan(&blob, &cachedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read summary for %s: %w", key, err)
	}

	var summary domain.AccountSummary
	if err := msgpack.Unmarshal(blob, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary for %s: %w", key, err)
	}

	return &Entry{
		Summary:  &summary,
		CachedAt: time.Unix(cachedAt, 0),
	}, nil
}

// Delete removes one entry.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM account_summaries WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// DeleteAll removes every entry.
func (s *Store) DeleteAll() error {
	if _, err := s.db.Exec("DELETE FROM account_summaries"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// DeleteExpired removes rows past their storage expiry. Returns the number of
// rows deleted.
func (s *Store) DeleteExpired(now time.Time) (int64, error) {
	result, err := s.db.Exec("DELETE FROM account_summaries WHERE expires_at < ?", now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired entries: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Count returns the number of stored entries. Used by the status endpoint.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM account_summaries").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}
