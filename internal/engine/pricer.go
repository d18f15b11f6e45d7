package engine

import (
	"errors"
	"fmt"
	"time"

	"quantsim/types"

	"github.com/shopspring/decimal"
)

var ErrNoPriorBar = errors.New("no prior bar for asset")

// OrderPricing is the order type plus the prices that type requires.
// Market orders carry no prices, limit and stop orders a primary, and
// stop-limit orders a stop trigger primary with a limit secondary.
type OrderPricing struct {
	Type           types.OrderType
	PrimaryPrice   decimal.Decimal
	SecondaryPrice decimal.Decimal
}

// OrderPriceCalculator turns a trade intent into an order type and
// price(s) from the history up to the trade date.
type OrderPriceCalculator interface {
	CalculatePrices(date time.Time, asset types.Asset, action types.TradeAction, hist *History) (OrderPricing, error)
}

// MarketOrderCalculator always prices at market.
type MarketOrderCalculator struct{}

func (MarketOrderCalculator) CalculatePrices(time.Time, types.Asset, types.TradeAction, *History) (OrderPricing, error) {
	return OrderPricing{Type: types.TypeMarket}, nil
}

// PriorCloseLimitCalculator emits a limit order at the previous bar's
// close. It fails outright when no bar precedes the trade date rather
// than defaulting to a market order.
type PriorCloseLimitCalculator struct{}

func (PriorCloseLimitCalculator) CalculatePrices(date time.Time, asset types.Asset, _ types.TradeAction, hist *History) (OrderPricing, error) {
	bar, ok := hist.PriorBar(asset, date)
	if !ok {
		return OrderPricing{}, fmt.Errorf("%w: %s before %s", ErrNoPriorBar, asset, date.Format(time.DateOnly))
	}
	return OrderPricing{Type: types.TypeLimit, PrimaryPrice: bar.Close}, nil
}
