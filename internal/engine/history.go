package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"quantsim/types"

	"github.com/shopspring/decimal"
)

// Global error declarations.
var (
	ErrDuplicateBar   = errors.New("bar already recorded for date and asset")
	ErrOutOfOrderDate = errors.New("market date earlier than last recorded date")
	ErrMissingFxRate  = errors.New("no fx rate for currency")
)

// History is the portfolio's accumulated market and fx record. Dates
// are appended in replay order and stay monotonically non-decreasing.
type History struct {
	base    types.Currency
	dates   []time.Time
	bars    map[time.Time]map[types.Asset]types.Bar
	fxDates []time.Time
	fx      map[time.Time]map[types.Currency]decimal.Decimal
}

func newHistory(base types.Currency) *History {
	return &History{
		base: base,
		bars: make(map[time.Time]map[types.Asset]types.Bar),
		fx:   make(map[time.Time]map[types.Currency]decimal.Decimal),
	}
}

func (h *History) BaseCurrency() types.Currency {
	return h.base
}

// Dates returns the recorded market dates in replay order.
func (h *History) Dates() []time.Time {
	return append([]time.Time(nil), h.dates...)
}

// Bar returns the bar recorded for the exact date and asset.
func (h *History) Bar(date time.Time, asset types.Asset) (types.Bar, bool) {
	bar, ok := h.bars[date][asset]
	return bar, ok
}

// LatestBar returns the most recent bar for the asset at or before
// date. Not every asset trades every day, so valuation reaches for the
// last known price.
func (h *History) LatestBar(asset types.Asset, date time.Time) (types.Bar, bool) {
	for i := len(h.dates) - 1; i >= 0; i-- {
		d := h.dates[i]
		if d.After(date) {
			continue
		}
		if bar, ok := h.bars[d][asset]; ok {
			return bar, true
		}
	}
	return types.Bar{}, false
}

// PriorBar returns the most recent bar for the asset strictly before
// date.
func (h *History) PriorBar(asset types.Asset, date time.Time) (types.Bar, bool) {
	for i := len(h.dates) - 1; i >= 0; i-- {
		d := h.dates[i]
		if !d.Before(date) {
			continue
		}
		if bar, ok := h.bars[d][asset]; ok {
			return bar, true
		}
	}
	return types.Bar{}, false
}

// SeriesThrough returns up to n bars for the asset ending at date,
// oldest first.
func (h *History) SeriesThrough(asset types.Asset, date time.Time, n int) []types.Bar {
	var series []types.Bar
	for _, d := range h.dates {
		if d.After(date) {
			break
		}
		if bar, ok := h.bars[d][asset]; ok {
			series = append(series, bar)
		}
	}
	if len(series) > n {
		series = series[len(series)-n:]
	}
	return series
}

// FxRate converts one unit of currency into the base currency on the
// given date, falling back to the latest earlier rate when the exact
// date is absent.
func (h *History) FxRate(date time.Time, currency types.Currency) (decimal.Decimal, error) {
	if currency == h.base {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := h.fx[date][currency]; ok {
		return rate, nil
	}
	for i := len(h.fxDates) - 1; i >= 0; i-- {
		d := h.fxDates[i]
		if d.After(date) {
			continue
		}
		if rate, ok := h.fx[d][currency]; ok {
			return rate, nil
		}
	}
	return decimal.Zero, fmt.Errorf("%w: %s on %s", ErrMissingFxRate, currency, date.Format(time.DateOnly))
}

// merge records one date's bar batch. Re-recording an existing
// (date, asset) pair is an error, never a silent overwrite, and dates
// must arrive in chronological order.
func (h *History) merge(date time.Time, bars map[types.Asset]types.Bar) error {
	if n := len(h.dates); n > 0 && date.Before(h.dates[n-1]) {
		return fmt.Errorf("%w: %s after %s", ErrOutOfOrderDate, date.Format(time.DateOnly), h.dates[n-1].Format(time.DateOnly))
	}
	existing, seen := h.bars[date]
	if !seen {
		existing = make(map[types.Asset]types.Bar, len(bars))
		h.bars[date] = existing
		h.dates = append(h.dates, date)
	}
	for _, asset := range sortedAssets(bars) {
		if _, dup := existing[asset]; dup {
			return fmt.Errorf("%w: %s on %s", ErrDuplicateBar, asset, date.Format(time.DateOnly))
		}
		existing[asset] = bars[asset]
	}
	return nil
}

// MergeFxRates loads per-date currency conversion rates into the
// history. Called by the replay driver before the dates are processed.
func (h *History) MergeFxRates(rates map[time.Time]map[types.Currency]decimal.Decimal) {
	for date, perCurrency := range rates {
		existing, seen := h.fx[date]
		if !seen {
			existing = make(map[types.Currency]decimal.Decimal, len(perCurrency))
			h.fx[date] = existing
			h.fxDates = append(h.fxDates, date)
		}
		for currency, rate := range perCurrency {
			existing[currency] = rate
		}
	}
	sort.Slice(h.fxDates, func(i, j int) bool { return h.fxDates[i].Before(h.fxDates[j]) })
}

// rescaleBefore rewrites the asset's bars strictly before date into
// post-split convention so the stored series stays continuous with the
// bars that follow the split.
func (h *History) rescaleBefore(asset types.Asset, date time.Time, coefficient decimal.Decimal) {
	for _, d := range h.dates {
		if !d.Before(date) {
			break
		}
		if bar, ok := h.bars[d][asset]; ok {
			h.bars[d][asset] = bar.SplitAdjusted(coefficient)
		}
	}
}

func sortedAssets[V any](m map[types.Asset]V) []types.Asset {
	assets := make([]types.Asset, 0, len(m))
	for asset := range m {
		assets = append(assets, asset)
	}
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].Symbol != assets[j].Symbol {
			return assets[i].Symbol < assets[j].Symbol
		}
		return assets[i].Currency < assets[j].Currency
	})
	return assets
}
