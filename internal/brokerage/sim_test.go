package brokerage

import (
	"context"
	"testing"
	"time"

	"quantsim/internal/engine"
	"quantsim/types"

	"github.com/shopspring/decimal"
)

var aapl = types.NewAsset("AAPL", "USD")

func tradeDate() time.Time {
	return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
}

func simWithBar(t *testing.T, bar types.Bar) *Sim {
	t.Helper()
	portfolio := engine.NewPortfolio(engine.NewPortfolioConfig("USD", false), nil, nil)
	ev := engine.NewMarketEvent(tradeDate(), map[types.Asset]types.Bar{aapl: bar})
	if err := portfolio.Processor().Process(context.Background(), ev); err != nil {
		t.Fatalf("seed history: %v", err)
	}
	return NewSim(portfolio.History(), nil)
}

func testBar() types.Bar {
	return types.Bar{
		Open:             decimal.NewFromInt(50),
		High:             decimal.NewFromInt(51),
		Low:              decimal.NewFromInt(49),
		Close:            decimal.NewFromInt(50),
		AdjustedClose:    decimal.NewFromInt(49),
		Volume:           1000,
		SplitCoefficient: decimal.NewFromInt(1),
	}
}

func submit(t *testing.T, sim *Sim, order engine.OrderEvent) bool {
	t.Helper()
	accepted, err := sim.SubmitOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	return accepted
}

func TestSimMarketOrderFillsAtAdjustedClose(t *testing.T) {
	sim := simWithBar(t, testBar())
	order := engine.NewOrderEvent(tradeDate(), "alpha", aapl, types.ActionBuy,
		engine.OrderPricing{Type: types.TypeMarket}, 10)

	if !submit(t, sim, order) {
		t.Fatal("order rejected")
	}
	fills := sim.PendingFills()
	if len(fills) != 1 {
		t.Fatalf("fills = %d, want 1", len(fills))
	}
	fill := fills[0]
	if !fill.FillPrice.Equal(decimal.NewFromInt(49)) {
		t.Fatalf("fill price = %s, want adjusted close 49", fill.FillPrice)
	}
	if fill.Quantity != 10 {
		t.Fatalf("quantity = %d, want 10", fill.Quantity)
	}
	// 490 * 0.0005 is under the per-order minimum.
	if !fill.Commission.Equal(decimal.RequireFromString("1.70")) {
		t.Fatalf("commission = %s, want 1.70", fill.Commission)
	}
	if fill.Strategy != "alpha" {
		t.Fatalf("strategy = %s, want alpha", fill.Strategy)
	}

	if got := sim.PendingFills(); len(got) != 0 {
		t.Fatalf("second drain = %d fills, want 0", len(got))
	}
}

func TestSimSellFillsWithNegativeQuantity(t *testing.T) {
	sim := simWithBar(t, testBar())
	order := engine.NewOrderEvent(tradeDate(), "alpha", aapl, types.ActionSell,
		engine.OrderPricing{Type: types.TypeMarket}, 10)

	if !submit(t, sim, order) {
		t.Fatal("order rejected")
	}
	fills := sim.PendingFills()
	if len(fills) != 1 || fills[0].Quantity != -10 {
		t.Fatalf("fills = %v, want one fill of -10", fills)
	}
}

func TestSimFillPricePerOrderType(t *testing.T) {
	pricing := engine.OrderPricing{
		PrimaryPrice:   decimal.NewFromInt(48),
		SecondaryPrice: decimal.NewFromInt(47),
	}

	tests := []struct {
		orderType types.OrderType
		want      decimal.Decimal
	}{
		{types.TypeLimit, decimal.NewFromInt(48)},
		{types.TypeStop, decimal.NewFromInt(48)},
		{types.TypeStopLimit, decimal.NewFromInt(47)},
	}

	for _, tc := range tests {
		t.Run(string(tc.orderType), func(t *testing.T) {
			sim := simWithBar(t, testBar())
			pricing.Type = tc.orderType
			order := engine.NewOrderEvent(tradeDate(), "alpha", aapl, types.ActionBuy, pricing, 10)

			if !submit(t, sim, order) {
				t.Fatal("order rejected")
			}
			fills := sim.PendingFills()
			if len(fills) != 1 || !fills[0].FillPrice.Equal(tc.want) {
				t.Fatalf("fill price = %s, want %s", fills[0].FillPrice, tc.want)
			}
		})
	}
}

func TestSimRejections(t *testing.T) {
	tests := []struct {
		name  string
		order engine.OrderEvent
	}{
		{
			"zero quantity",
			engine.NewOrderEvent(tradeDate(), "alpha", aapl, types.ActionBuy,
				engine.OrderPricing{Type: types.TypeMarket}, 0),
		},
		{
			"no bar on order date",
			engine.NewOrderEvent(tradeDate().AddDate(0, 0, 1), "alpha", aapl, types.ActionBuy,
				engine.OrderPricing{Type: types.TypeMarket}, 10),
		},
		{
			"limit without a price",
			engine.NewOrderEvent(tradeDate(), "alpha", aapl, types.ActionBuy,
				engine.OrderPricing{Type: types.TypeLimit}, 10),
		},
		{
			"unknown order type",
			engine.NewOrderEvent(tradeDate(), "alpha", aapl, types.ActionBuy,
				engine.OrderPricing{Type: "ICEBERG"}, 10),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sim := simWithBar(t, testBar())
			if submit(t, sim, tc.order) {
				t.Fatal("order accepted, want rejection")
			}
			if fills := sim.PendingFills(); len(fills) != 0 {
				t.Fatalf("fills = %d, want 0", len(fills))
			}
		})
	}
}

func TestSimResubmissionIsIdempotent(t *testing.T) {
	sim := simWithBar(t, testBar())
	order := engine.NewOrderEvent(tradeDate(), "alpha", aapl, types.ActionBuy,
		engine.OrderPricing{Type: types.TypeMarket}, 10)

	if !submit(t, sim, order) {
		t.Fatal("first submission rejected")
	}
	// Same order ID again: acknowledged, not refilled.
	if !submit(t, sim, order) {
		t.Fatal("resubmission rejected")
	}
	if fills := sim.PendingFills(); len(fills) != 1 {
		t.Fatalf("fills = %d, want 1", len(fills))
	}
}

func TestFixedTierCommission(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"clamped to minimum", "1000", "1.70"},
		{"proportional", "10000", "5"},
		{"clamped to maximum", "100000", "39"},
		{"zero value", "0", "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := fixedTierCommission(decimal.RequireFromString(tc.value))
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("fee(%s) = %s, want %s", tc.value, got, tc.want)
			}
		})
	}
}
