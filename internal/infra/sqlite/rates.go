package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ─── Exchange Rate Cache ────────────────────────────────────────────────────

// CachedRates returns the stored conversion rates for a base currency and
// when they were fetched. A miss returns nil rates and no error.
func (db *DB) CachedRates(base string) (map[string]float64, time.Time, error) {
	var ratesJSON string
	var updated sql.NullString
	err := db.db.QueryRow(`
		SELECT rates_json, updated_at FROM exchange_rates WHERE base = ?
	`, base).Scan(&ratesJSON, &updated)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("cached rates: %w", err)
	}

	var rates map[string]float64
	if err := json.Unmarshal([]byte(ratesJSON), &rates); err != nil {
		return nil, time.Time{}, fmt.Errorf("cached rates: %w", err)
	}
	return rates, decodeTime(updated), nil
}

// PutCachedRates upserts the conversion rates for a base currency.
func (db *DB) PutCachedRates(base string, rates map[string]float64, at time.Time) error {
	ratesJSON, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("cache rates: %w", err)
	}
	_, err = db.db.Exec(`
		INSERT INTO exchange_rates (base, rates_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(base) DO UPDATE SET
			rates_json = excluded.rates_json,
			updated_at = excluded.updated_at
	`, base, string(ratesJSON), encodeTime(at))
	if err != nil {
		return fmt.Errorf("cache rates: %w", err)
	}
	return nil
}
