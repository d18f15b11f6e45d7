package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"quantsim/types"

	"github.com/shopspring/decimal"
)

const barsSQL = `
SELECT symbol, currency, trade_date, open, high, low, close, adjusted_close,
       volume, dividend_per_share, split_coefficient
FROM daily_bars
WHERE symbol = ANY($1) AND trade_date BETWEEN $2 AND $3
ORDER BY trade_date, symbol`

type barRow struct {
	symbol           string
	currency         string
	date             time.Time
	open             decimal.Decimal
	high             decimal.Decimal
	low              decimal.Decimal
	close            decimal.Decimal
	adjustedClose    decimal.Decimal
	volume           int64
	dividendPerShare decimal.Decimal
	splitCoefficient decimal.Decimal
}

// BarBatches loads the assets' daily bars for the range, grouped into
// one batch per trade date in chronological order.
func (db *Database) BarBatches(ctx context.Context, assets []types.Asset, start, end time.Time) ([]types.BarBatch, error) {
	symbols := make([]string, 0, len(assets))
	for _, asset := range assets {
		symbols = append(symbols, asset.Symbol)
	}

	rows, err := db.conn.Query(ctx, barsSQL, symbols, start, end)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var scanned []barRow
	for rows.Next() {
		var r barRow
		if err := rows.Scan(&r.symbol, &r.currency, &r.date, &r.open, &r.high, &r.low,
			&r.close, &r.adjustedClose, &r.volume, &r.dividendPerShare, &r.splitCoefficient); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		scanned = append(scanned, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(scanned) == 0 {
		return nil, ErrNoBars
	}

	return groupBatches(scanned), nil
}

// groupBatches folds date-ordered rows into per-date batches.
func groupBatches(rows []barRow) []types.BarBatch {
	byDate := make(map[time.Time]map[types.Asset]types.Bar)
	for _, r := range rows {
		asset := types.NewAsset(r.symbol, types.Currency(r.currency))
		bars, ok := byDate[r.date]
		if !ok {
			bars = make(map[types.Asset]types.Bar)
			byDate[r.date] = bars
		}
		bars[asset] = types.Bar{
			Timestamp:        r.date,
			Open:             r.open,
			High:             r.high,
			Low:              r.low,
			Close:            r.close,
			AdjustedClose:    r.adjustedClose,
			Volume:           r.volume,
			DividendPerShare: r.dividendPerShare,
			SplitCoefficient: r.splitCoefficient,
		}
	}

	batches := make([]types.BarBatch, 0, len(byDate))
	for date, bars := range byDate {
		batches = append(batches, types.BarBatch{Date: date, Bars: bars})
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].Date.Before(batches[j].Date) })
	return batches
}
