package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one dated OHLC record for one asset, including the corporate
// actions that took effect on that date. SplitCoefficient of 1 means no
// split, DividendPerShare greater than zero means a dividend was paid.
type Bar struct {
	Timestamp        time.Time
	Open             decimal.Decimal
	High             decimal.Decimal
	Low              decimal.Decimal
	Close            decimal.Decimal
	AdjustedClose    decimal.Decimal
	Volume           int64
	DividendPerShare decimal.Decimal
	SplitCoefficient decimal.Decimal
}

func (b Bar) HasDividend() bool {
	return b.DividendPerShare.IsPositive()
}

func (b Bar) HasSplit() bool {
	return !b.SplitCoefficient.IsZero() && !b.SplitCoefficient.Equal(decimal.NewFromInt(1))
}

// SplitAdjusted returns the bar rescaled to post-split convention:
// prices divided by the coefficient, volume multiplied. Quantity times
// price is unchanged by the adjustment.
func (b Bar) SplitAdjusted(coefficient decimal.Decimal) Bar {
	adj := b
	adj.Open = b.Open.Div(coefficient)
	adj.High = b.High.Div(coefficient)
	adj.Low = b.Low.Div(coefficient)
	adj.Close = b.Close.Div(coefficient)
	adj.AdjustedClose = b.AdjustedClose.Div(coefficient)
	adj.Volume = decimal.NewFromInt(b.Volume).Mul(coefficient).IntPart()
	return adj
}

// BarBatch is every tracked asset's bar for a single date, the unit in
// which market data enters the simulation.
type BarBatch struct {
	Date time.Time
	Bars map[Asset]Bar
}
