package engine

import (
	"time"

	"quantsim/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is the closed set of occurrences the simulation reacts to. The
// marker method keeps the set closed to this package so the processor's
// type switch stays exhaustive.
type Event interface {
	isEvent()
}

// MarketEvent carries every tracked asset's bar for one date.
type MarketEvent struct {
	Date time.Time
	Bars map[types.Asset]types.Bar
}

func NewMarketEvent(date time.Time, bars map[types.Asset]types.Bar) MarketEvent {
	copied := make(map[types.Asset]types.Bar, len(bars))
	for asset, bar := range bars {
		copied[asset] = bar
	}
	return MarketEvent{Date: date, Bars: copied}
}

func (MarketEvent) isEvent() {}

// SignalEvent is one strategy's directional intents for one date.
type SignalEvent struct {
	Date     time.Time
	Strategy string
	Signals  map[types.Asset]types.SignalType
}

func NewSignalEvent(date time.Time, strategy string, signals map[types.Asset]types.SignalType) SignalEvent {
	copied := make(map[types.Asset]types.SignalType, len(signals))
	for asset, signal := range signals {
		copied[asset] = signal
	}
	return SignalEvent{Date: date, Strategy: strategy, Signals: copied}
}

func (SignalEvent) isEvent() {}

// OrderEvent is a sized trade intent. The ID is assigned once at
// construction so resubmissions of the same order stay idempotent at
// the brokerage. PrimaryPrice and SecondaryPrice are meaningful per
// order type: market orders carry neither, limit and stop orders carry
// a primary, stop-limit orders carry both (stop trigger, then limit).
type OrderEvent struct {
	ID             uuid.UUID
	Date           time.Time
	Strategy       string
	Asset          types.Asset
	Action         types.TradeAction
	Type           types.OrderType
	Quantity       int64
	PrimaryPrice   decimal.Decimal
	SecondaryPrice decimal.Decimal
}

func NewOrderEvent(date time.Time, strategy string, asset types.Asset, action types.TradeAction, pricing OrderPricing, quantity int64) OrderEvent {
	return OrderEvent{
		ID:             uuid.New(),
		Date:           date,
		Strategy:       strategy,
		Asset:          asset,
		Action:         action,
		Type:           pricing.Type,
		Quantity:       quantity,
		PrimaryPrice:   pricing.PrimaryPrice,
		SecondaryPrice: pricing.SecondaryPrice,
	}
}

func (OrderEvent) isEvent() {}

// FillEvent confirms an execution. Quantity is signed: positive for
// buys, negative for sells. The cash update subtracts
// FillPrice*Quantity + Commission unconditionally, which is only
// correct under this sign convention.
type FillEvent struct {
	Date       time.Time
	Asset      types.Asset
	Quantity   int64
	FillPrice  decimal.Decimal
	Commission decimal.Decimal
	Strategy   string
}

func NewFillEvent(date time.Time, asset types.Asset, quantity int64, fillPrice, commission decimal.Decimal, strategy string) FillEvent {
	return FillEvent{
		Date:       date,
		Asset:      asset,
		Quantity:   quantity,
		FillPrice:  fillPrice,
		Commission: commission,
		Strategy:   strategy,
	}
}

func (FillEvent) isEvent() {}

// DividendEvent credits a per-share cash dividend for one asset.
type DividendEvent struct {
	Date             time.Time
	Asset            types.Asset
	DividendPerShare decimal.Decimal
}

func NewDividendEvent(date time.Time, asset types.Asset, dividendPerShare decimal.Decimal) DividendEvent {
	return DividendEvent{Date: date, Asset: asset, DividendPerShare: dividendPerShare}
}

func (DividendEvent) isEvent() {}
