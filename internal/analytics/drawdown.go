package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// EquityPoint is one dated reading of total portfolio value.
type EquityPoint struct {
	Date   time.Time
	Equity decimal.Decimal
}

// Drawdown is the percentage decline from the running equity peak on
// one date. Zero on dates that set a new peak.
type Drawdown struct {
	Date     time.Time
	Drawdown decimal.Decimal
}

// DrawdownResult summarizes the underwater profile of an equity curve.
// MaxDrawdownDuration is measured in whole days between the last peak
// and the deepest point of the longest underwater stretch.
type DrawdownResult struct {
	Drawdowns           []Drawdown
	MaxDrawdown         decimal.Decimal
	MaxDrawdownDuration int
}

// DrawdownAnalysis walks the equity curve in order, tracking the
// running peak. The curve must be chronological and hold at least two
// points.
func DrawdownAnalysis(curve []EquityPoint) (*DrawdownResult, error) {
	if len(curve) == 0 {
		return nil, ErrEmptySeries
	}
	if len(curve) < 2 {
		return nil, ErrInsufficientData
	}

	peak := curve[0].Equity
	peakDate := curve[0].Date

	result := &DrawdownResult{
		Drawdowns: make([]Drawdown, 0, len(curve)),
	}

	for i, point := range curve {
		if i == 0 || point.Equity.GreaterThan(peak) {
			peak = point.Equity
			peakDate = point.Date
			result.Drawdowns = append(result.Drawdowns, Drawdown{Date: point.Date, Drawdown: decimal.Zero})
			continue
		}

		dd := point.Equity.Div(peak).Sub(one)
		result.Drawdowns = append(result.Drawdowns, Drawdown{Date: point.Date, Drawdown: dd})

		if dd.LessThan(result.MaxDrawdown) {
			result.MaxDrawdown = dd
		}
		days := int(point.Date.Sub(peakDate).Hours() / 24)
		if days > result.MaxDrawdownDuration {
			result.MaxDrawdownDuration = days
		}
	}

	return result, nil
}
