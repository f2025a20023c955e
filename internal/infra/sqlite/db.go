// Package sqlite persists accounts, sessions, booster windows, interaction
// claims, and the exchange-rate cache. Timestamps are stored as RFC3339
// text with nanosecond precision so window boundaries survive the round
// trip exactly.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for tests.
func Open(path string) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// One writer at a time keeps the modernc driver honest; the engine
	// serializes per-account writes above this layer anyway.
	handle.SetMaxOpenConns(1)
	if _, err := handle.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		handle.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{db: handle}
	if err := db.migrate(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying handle.
func (db *DB) Close() error { return db.db.Close() }

// Migrations returns the schema statements. Each string is a single SQL
// statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id                 TEXT PRIMARY KEY,
			email              TEXT NOT NULL UNIQUE,
			balance            REAL NOT NULL DEFAULT 0,
			session_start      TEXT,
			session_last_claim TEXT,
			session_active     INTEGER NOT NULL DEFAULT 0,
			cooldown_end       TEXT,
			referred_by        TEXT,
			created_at         TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_referred_by ON accounts(referred_by)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_active ON accounts(session_active)`,

		// Wallet addresses are globally unique: one owner per address.
		`CREATE TABLE IF NOT EXISTS wallets (
			address    TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES accounts(id),
			added_at   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wallets_account ON wallets(account_id)`,

		// One optional activation window per action kind per account.
		`CREATE TABLE IF NOT EXISTS boosters (
			account_id TEXT NOT NULL REFERENCES accounts(id),
			kind       TEXT NOT NULL,
			start_time TEXT NOT NULL,
			expiration TEXT NOT NULL,
			PRIMARY KEY (account_id, kind)
		)`,

		// Last successful interaction-reward claim per action kind.
		`CREATE TABLE IF NOT EXISTS interactions (
			account_id TEXT NOT NULL REFERENCES accounts(id),
			kind       TEXT NOT NULL,
			last_claim TEXT NOT NULL,
			PRIMARY KEY (account_id, kind)
		)`,

		// Cached upstream exchange rates, one row per base currency.
		`CREATE TABLE IF NOT EXISTS exchange_rates (
			base       TEXT PRIMARY KEY,
			rates_json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ─── Timestamp Helpers ──────────────────────────────────────────────────────

func encodeTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
