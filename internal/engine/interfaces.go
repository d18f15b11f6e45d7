package engine

import (
	"context"
	"time"

	"quantsim/types"

	"github.com/shopspring/decimal"
)

// Brokerage accepts orders for execution. The boolean is the
// synchronous acceptance signal; fills arrive later, out of band,
// through the event processor.
type Brokerage interface {
	SubmitOrder(ctx context.Context, order OrderEvent) (bool, error)
}

// FillSource is implemented by brokerages that settle orders inside the
// simulation. The replay driver drains pending fills after each market
// event so they re-enter the processor in order.
type FillSource interface {
	PendingFills() []FillEvent
}

// MarketDataSource produces chronologically non-decreasing per-date bar
// batches, each holding all tracked assets' bars for that date.
type MarketDataSource interface {
	BarBatches(ctx context.Context, assets []types.Asset, start, end time.Time) ([]types.BarBatch, error)
}

// FxRateSource produces per-date currency conversion rates into the
// base currency for every currency a strategy holds or trades.
type FxRateSource interface {
	Rates(ctx context.Context, currencies []types.Currency, start, end time.Time) (map[time.Time]map[types.Currency]decimal.Decimal, error)
}

// SymbolSource supplies the asset universe and its currencies, read
// once at setup.
type SymbolSource interface {
	AssetsBySymbols(ctx context.Context, symbols []string) ([]types.Asset, error)
}

// SignalGenerator produces one date's directional intents for a
// strategy. Implementations live outside the engine; the engine only
// routes their output.
type SignalGenerator interface {
	GenerateSignals(date time.Time, strat *Strategy, hist *History) (map[types.Asset]types.SignalType, error)
}
