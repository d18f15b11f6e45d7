package repository

import (
	"context"
	"fmt"
	"time"

	"quantsim/types"

	"github.com/shopspring/decimal"
)

const fxRatesSQL = `
SELECT trade_date, currency, rate
FROM fx_rates
WHERE currency = ANY($1) AND trade_date BETWEEN $2 AND $3
ORDER BY trade_date, currency`

// Rates loads per-date conversion rates into the base currency for the
// given currencies. The base currency itself needs no stored rate, so
// an empty result is only an error when foreign currencies were asked
// for.
func (db *Database) Rates(ctx context.Context, currencies []types.Currency, start, end time.Time) (map[time.Time]map[types.Currency]decimal.Decimal, error) {
	codes := make([]string, 0, len(currencies))
	for _, currency := range currencies {
		codes = append(codes, string(currency))
	}

	rows, err := db.conn.Query(ctx, fxRatesSQL, codes, start, end)
	if err != nil {
		return nil, fmt.Errorf("query fx rates: %w", err)
	}
	defer rows.Close()

	rates := make(map[time.Time]map[types.Currency]decimal.Decimal)
	for rows.Next() {
		var (
			date     time.Time
			currency string
			rate     decimal.Decimal
		)
		if err := rows.Scan(&date, &currency, &rate); err != nil {
			return nil, fmt.Errorf("scan fx rate: %w", err)
		}
		perDate, ok := rates[date]
		if !ok {
			perDate = make(map[types.Currency]decimal.Decimal)
			rates[date] = perDate
		}
		perDate[types.Currency(currency)] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rates, nil
}
