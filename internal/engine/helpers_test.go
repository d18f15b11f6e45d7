package engine

import (
	"context"
	"testing"
	"time"

	"quantsim/types"

	"github.com/shopspring/decimal"
)

var (
	aapl = types.NewAsset("AAPL", "USD")
	msft = types.NewAsset("MSFT", "USD")
	sap  = types.NewAsset("SAP", "EUR")
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func barAt(close string) types.Bar {
	c := decimal.RequireFromString(close)
	return types.Bar{
		Open:             c,
		High:             c,
		Low:              c,
		Close:            c,
		AdjustedClose:    c,
		Volume:           1000,
		SplitCoefficient: decimal.NewFromInt(1),
	}
}

func usdCash(amount string) map[types.Currency]decimal.Decimal {
	return map[types.Currency]decimal.Decimal{"USD": decimal.RequireFromString(amount)}
}

func newTestPortfolio(t *testing.T) *Portfolio {
	t.Helper()
	return NewPortfolio(NewPortfolioConfig("USD", false), nil, nil)
}

func mustProcess(t *testing.T, p *Portfolio, e Event) {
	t.Helper()
	if err := p.Processor().Process(context.Background(), e); err != nil {
		t.Fatalf("process %T: %v", e, err)
	}
}

func mustAddStrategy(t *testing.T, p *Portfolio, strat *Strategy) {
	t.Helper()
	if err := p.AddStrategy(strat); err != nil {
		t.Fatalf("add strategy %s: %v", strat.Name(), err)
	}
}

// captureBroker records submitted orders without settling them.
type captureBroker struct {
	orders   []OrderEvent
	accepted bool
	err      error
	calls    int
}

func (b *captureBroker) SubmitOrder(_ context.Context, order OrderEvent) (bool, error) {
	b.calls++
	if b.err != nil {
		return false, b.err
	}
	b.orders = append(b.orders, order)
	return b.accepted, nil
}

// fillBroker settles accepted orders same-day against the history,
// at adjusted close for market orders and at the primary price
// otherwise.
type fillBroker struct {
	hist       *History
	commission decimal.Decimal
	pending    []FillEvent
}

func (b *fillBroker) SubmitOrder(_ context.Context, order OrderEvent) (bool, error) {
	bar, ok := b.hist.Bar(order.Date, order.Asset)
	if !ok {
		return false, nil
	}
	price := bar.AdjustedClose
	if order.Type != types.TypeMarket {
		price = order.PrimaryPrice
	}
	quantity := order.Quantity
	if order.Action == types.ActionSell {
		quantity = -quantity
	}
	b.pending = append(b.pending, NewFillEvent(order.Date, order.Asset, quantity, price, b.commission, order.Strategy))
	return true, nil
}

func (b *fillBroker) PendingFills() []FillEvent {
	fills := b.pending
	b.pending = nil
	return fills
}

// alwaysLong signals Long for every listed asset on every date.
type alwaysLong struct {
	assets []types.Asset
}

func (g alwaysLong) GenerateSignals(time.Time, *Strategy, *History) (map[types.Asset]types.SignalType, error) {
	signals := make(map[types.Asset]types.SignalType, len(g.assets))
	for _, asset := range g.assets {
		signals[asset] = types.SignalLong
	}
	return signals, nil
}

type staticMarketData struct {
	batches []types.BarBatch
}

func (s staticMarketData) BarBatches(context.Context, []types.Asset, time.Time, time.Time) ([]types.BarBatch, error) {
	return s.batches, nil
}

type staticFxRates struct {
	rates map[time.Time]map[types.Currency]decimal.Decimal
}

func (s staticFxRates) Rates(context.Context, []types.Currency, time.Time, time.Time) (map[time.Time]map[types.Currency]decimal.Decimal, error) {
	return s.rates, nil
}
