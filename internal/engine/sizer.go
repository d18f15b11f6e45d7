package engine

import (
	"errors"
	"fmt"
	"time"

	"quantsim/types"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingWeight     = errors.New("no weight configured for asset")
	ErrMissingMarketData = errors.New("no market data for asset")
)

// PositionSizer maps one date's signals to desired whole-share position
// sizes. It is called once per signal event, not once per asset.
// Assets that cannot be sized are omitted from the result and reported
// through the returned (possibly joined) error; sizing one asset never
// blocks its siblings.
type PositionSizer interface {
	ComputeSizes(date time.Time, signals map[types.Asset]types.SignalType, strat *Strategy, hist *History) (map[types.Asset]int64, error)
}

// FixedWeightSizer targets a fixed fraction of total strategy value per
// asset: desired = trunc(totalValue * weight / price), with price
// converted into the base currency. Long signals target the weight,
// short signals its negation, exit signals zero.
type FixedWeightSizer struct {
	weights map[types.Asset]decimal.Decimal
}

func NewFixedWeightSizer(weights map[types.Asset]decimal.Decimal) *FixedWeightSizer {
	copied := make(map[types.Asset]decimal.Decimal, len(weights))
	for asset, weight := range weights {
		copied[asset] = weight
	}
	return &FixedWeightSizer{weights: copied}
}

func (f *FixedWeightSizer) ComputeSizes(date time.Time, signals map[types.Asset]types.SignalType, strat *Strategy, hist *History) (map[types.Asset]int64, error) {
	totalValue, err := strat.TotalValue(date, hist)
	if err != nil {
		return nil, err
	}

	sizes := make(map[types.Asset]int64, len(signals))
	var failed []error

	for _, asset := range sortedAssets(signals) {
		if signals[asset] == types.SignalExit {
			sizes[asset] = 0
			continue
		}

		weight, ok := f.weights[asset]
		if !ok {
			failed = append(failed, fmt.Errorf("%w: %s", ErrMissingWeight, asset))
			continue
		}
		bar, ok := hist.Bar(date, asset)
		if !ok {
			failed = append(failed, fmt.Errorf("%w: %s on %s", ErrMissingMarketData, asset, date.Format(time.DateOnly)))
			continue
		}
		rate, err := hist.FxRate(date, asset.Currency)
		if err != nil {
			failed = append(failed, err)
			continue
		}

		priceInBase := bar.AdjustedClose.Mul(rate)
		if priceInBase.IsZero() {
			failed = append(failed, fmt.Errorf("%w: zero price for %s", ErrMissingMarketData, asset))
			continue
		}

		desired := totalValue.Mul(weight).Div(priceInBase).IntPart()
		if signals[asset] == types.SignalShort {
			desired = -desired
		}
		sizes[asset] = desired
	}

	return sizes, errors.Join(failed...)
}
