/**
 * @description
 * Currency rate queries. Rates are keyed by the (from, to) pair and written
 * with an idempotent upsert so the refresh job can run any number of times.
 */
package store

import (
	"context"
)

// UpsertCurrencyRate writes one conversion rate, keyed by the pair.
func (r *Repository) UpsertCurrencyRate(ctx context.Context, from, to string, rate float64) error {
	query := `
        INSERT INTO currency_rates (from_currency, to_currency, rate)
        VALUES ($1, $2, $3)
        ON CONFLICT (from_currency, to_currency) DO UPDATE SET
            rate = EXCLUDED.rate,
            updated_at = NOW()`
	_, err := r.db.Exec(ctx, query, from, to, rate)
	return err
}

// ListRatesTo returns all stored rates converting into the given currency,
// keyed by source currency.
func (r *Repository) ListRatesTo(ctx context.Context, to string) (map[string]float64, error) {
	query := `
        SELECT from_currency, rate
        FROM currency_rates
        WHERE to_currency = $1`
	rows, err := r.db.Query(ctx, query, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := make(map[string]float64)
	for rows.Next() {
		var from string
		var rate float64
		if err := rows.Scan(&from, &rate); err != nil {
			return nil, err
		}
		rates[from] = rate
	}
	return rates, rows.Err()
}
