package engine

import (
	"fmt"
	"sort"
	"time"

	"quantsim/types"

	"github.com/shopspring/decimal"
)

// Strategy holds one strategy's positions and per-currency cash, plus
// the pluggable sizing and pricing components that turn its signals
// into orders. It is owned by a Portfolio and mutated only through the
// event handlers.
type Strategy struct {
	name            string
	positions       map[types.Asset]int64
	cash            map[types.Currency]decimal.Decimal
	assetCurrencies map[types.Asset]types.Currency
	sizer           PositionSizer
	pricer          OrderPriceCalculator
	signals         SignalGenerator
}

func NewStrategy(name string, initialCash map[types.Currency]decimal.Decimal, universe []types.Asset, sizer PositionSizer, pricer OrderPriceCalculator, signals SignalGenerator) *Strategy {
	cash := make(map[types.Currency]decimal.Decimal, len(initialCash))
	for currency, amount := range initialCash {
		cash[currency] = amount
	}
	currencies := make(map[types.Asset]types.Currency, len(universe))
	for _, asset := range universe {
		currencies[asset] = asset.Currency
	}
	return &Strategy{
		name:            name,
		positions:       make(map[types.Asset]int64),
		cash:            cash,
		assetCurrencies: currencies,
		sizer:           sizer,
		pricer:          pricer,
		signals:         signals,
	}
}

func (s *Strategy) Name() string {
	return s.name
}

// Assets returns the strategy's tracked universe in deterministic
// order.
func (s *Strategy) Assets() []types.Asset {
	return sortedAssets(s.assetCurrencies)
}

func (s *Strategy) Position(asset types.Asset) int64 {
	return s.positions[asset]
}

// Positions returns a copy of the position map.
func (s *Strategy) Positions() map[types.Asset]int64 {
	out := make(map[types.Asset]int64, len(s.positions))
	for asset, qty := range s.positions {
		out[asset] = qty
	}
	return out
}

func (s *Strategy) Cash(currency types.Currency) decimal.Decimal {
	return s.cash[currency]
}

// CashBalances returns a copy of the per-currency cash map.
func (s *Strategy) CashBalances() map[types.Currency]decimal.Decimal {
	out := make(map[types.Currency]decimal.Decimal, len(s.cash))
	for currency, amount := range s.cash {
		out[currency] = amount
	}
	return out
}

// UpdatePosition applies a signed quantity delta. Every position key
// keeps a currency entry, so unseen assets are registered as they first
// trade.
func (s *Strategy) UpdatePosition(asset types.Asset, delta int64) {
	if _, ok := s.assetCurrencies[asset]; !ok {
		s.assetCurrencies[asset] = asset.Currency
	}
	s.positions[asset] += delta
}

// SetPosition overwrites the position outright, used by split
// adjustments.
func (s *Strategy) SetPosition(asset types.Asset, quantity int64) {
	if _, ok := s.assetCurrencies[asset]; !ok {
		s.assetCurrencies[asset] = asset.Currency
	}
	s.positions[asset] = quantity
}

// UpdateCash applies a signed cash delta in the given currency.
func (s *Strategy) UpdateCash(currency types.Currency, delta decimal.Decimal) {
	s.cash[currency] = s.cash[currency].Add(delta)
}

func (s *Strategy) currencyFor(asset types.Asset) types.Currency {
	if currency, ok := s.assetCurrencies[asset]; ok {
		return currency
	}
	return asset.Currency
}

// TotalValue sums holdings and cash into the base currency at the
// given date's prices and fx rates.
func (s *Strategy) TotalValue(date time.Time, hist *History) (decimal.Decimal, error) {
	total := decimal.Zero

	for _, asset := range sortedAssets(s.positions) {
		qty := s.positions[asset]
		if qty == 0 {
			continue
		}
		bar, ok := hist.LatestBar(asset, date)
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %s on %s", ErrMissingMarketData, asset, date.Format(time.DateOnly))
		}
		rate, err := hist.FxRate(date, s.currencyFor(asset))
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(decimal.NewFromInt(qty).Mul(bar.AdjustedClose).Mul(rate))
	}

	for _, currency := range sortedCurrencies(s.cash) {
		rate, err := hist.FxRate(date, currency)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(s.cash[currency].Mul(rate))
	}

	return total, nil
}

func sortedCurrencies[V any](m map[types.Currency]V) []types.Currency {
	currencies := make([]types.Currency, 0, len(m))
	for currency := range m {
		currencies = append(currencies, currency)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })
	return currencies
}
