package engine

import (
	"context"
	"errors"
	"testing"

	"quantsim/types"

	"github.com/shopspring/decimal"
)

type bogusEvent struct{}

func (bogusEvent) isEvent() {}

func TestProcessorRejectsUnknownEvent(t *testing.T) {
	p := newTestPortfolio(t)
	err := p.Processor().Process(context.Background(), bogusEvent{})
	if !errors.Is(err, ErrUnsupportedEvent) {
		t.Fatalf("err = %v, want ErrUnsupportedEvent", err)
	}
}

func TestAddStrategyDuplicate(t *testing.T) {
	p := newTestPortfolio(t)
	mustAddStrategy(t, p, NewStrategy("alpha", usdCash("1000"), []types.Asset{aapl}, nil, nil, nil))
	err := p.AddStrategy(NewStrategy("alpha", usdCash("1000"), []types.Asset{aapl}, nil, nil, nil))
	if !errors.Is(err, ErrDuplicateStrategy) {
		t.Fatalf("err = %v, want ErrDuplicateStrategy", err)
	}
}

func TestStrategyUnknown(t *testing.T) {
	p := newTestPortfolio(t)
	if _, err := p.Strategy("missing"); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("err = %v, want ErrUnknownStrategy", err)
	}
}

func TestFillBuyThenSell(t *testing.T) {
	p := newTestPortfolio(t)
	strat := NewStrategy("alpha", usdCash("100000"), []types.Asset{aapl}, nil, nil, nil)
	mustAddStrategy(t, p, strat)

	commission := decimal.NewFromInt(2)
	mustProcess(t, p, NewFillEvent(day(2), aapl, 10, decimal.NewFromInt(50), commission, "alpha"))

	if got := strat.Position(aapl); got != 10 {
		t.Fatalf("position after buy = %d, want 10", got)
	}
	wantCash := decimal.RequireFromString("99498") // 100000 - 500 - 2
	if got := strat.Cash("USD"); !got.Equal(wantCash) {
		t.Fatalf("cash after buy = %s, want %s", got, wantCash)
	}

	// Negative quantity credits cash; commission still debits.
	mustProcess(t, p, NewFillEvent(day(3), aapl, -10, decimal.NewFromInt(55), commission, "alpha"))

	if got := strat.Position(aapl); got != 0 {
		t.Fatalf("position after sell = %d, want 0", got)
	}
	wantCash = decimal.RequireFromString("100046") // 99498 + 550 - 2
	if got := strat.Cash("USD"); !got.Equal(wantCash) {
		t.Fatalf("cash after sell = %s, want %s", got, wantCash)
	}
}

func TestFillUnknownStrategy(t *testing.T) {
	p := newTestPortfolio(t)
	err := p.Processor().Process(context.Background(),
		NewFillEvent(day(2), aapl, 10, decimal.NewFromInt(50), decimal.Zero, "missing"))
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("err = %v, want ErrUnknownStrategy", err)
	}
}

func TestDividendCreditsEachOccurrence(t *testing.T) {
	p := newTestPortfolio(t)
	long := NewStrategy("long", usdCash("0"), []types.Asset{aapl}, nil, nil, nil)
	long.SetPosition(aapl, 100)
	short := NewStrategy("short", usdCash("0"), []types.Asset{aapl}, nil, nil, nil)
	short.SetPosition(aapl, -100)
	mustAddStrategy(t, p, long)
	mustAddStrategy(t, p, short)

	ev := NewDividendEvent(day(2), aapl, decimal.RequireFromString("0.5"))
	mustProcess(t, p, ev)
	mustProcess(t, p, ev)

	// Each event applies in full; the feed is trusted not to repeat.
	want := decimal.NewFromInt(100)
	if got := long.Cash("USD"); !got.Equal(want) {
		t.Fatalf("long cash = %s, want %s", got, want)
	}
	if got := short.Cash("USD"); !got.IsZero() {
		t.Fatalf("short position credited %s, want 0", got)
	}
}

func TestSplitScalesPositions(t *testing.T) {
	tests := []struct {
		name        string
		coefficient string
		held        int64
		want        int64
	}{
		{"two for one", "2", 3, 6},
		{"three for two truncates", "1.5", 3, 4},
		{"reverse split truncates", "0.5", 9, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPortfolio(t)
			strat := NewStrategy("alpha", usdCash("0"), []types.Asset{aapl}, nil, nil, nil)
			strat.SetPosition(aapl, tc.held)
			mustAddStrategy(t, p, strat)

			mustProcess(t, p, NewMarketEvent(day(2), map[types.Asset]types.Bar{aapl: barAt("100")}))

			split := barAt("50")
			split.SplitCoefficient = decimal.RequireFromString(tc.coefficient)
			mustProcess(t, p, NewMarketEvent(day(3), map[types.Asset]types.Bar{aapl: split}))

			if got := strat.Position(aapl); got != tc.want {
				t.Fatalf("position = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSplitRescalesEarlierHistory(t *testing.T) {
	p := newTestPortfolio(t)
	strat := NewStrategy("alpha", usdCash("0"), []types.Asset{aapl}, nil, nil, nil)
	strat.SetPosition(aapl, 10)
	mustAddStrategy(t, p, strat)

	mustProcess(t, p, NewMarketEvent(day(2), map[types.Asset]types.Bar{aapl: barAt("100")}))

	split := barAt("50")
	split.SplitCoefficient = decimal.NewFromInt(2)
	mustProcess(t, p, NewMarketEvent(day(3), map[types.Asset]types.Bar{aapl: split}))

	bar, ok := p.History().Bar(day(2), aapl)
	if !ok {
		t.Fatal("day 2 bar missing")
	}
	if !bar.Close.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("rescaled close = %s, want 50", bar.Close)
	}
	if bar.Volume != 2000 {
		t.Fatalf("rescaled volume = %d, want 2000", bar.Volume)
	}
}

func TestSplitLeavesHistoryAloneWhenLive(t *testing.T) {
	p := NewPortfolio(NewPortfolioConfig("USD", true), nil, nil)
	strat := NewStrategy("alpha", usdCash("0"), []types.Asset{aapl}, nil, nil, nil)
	strat.SetPosition(aapl, 10)
	mustAddStrategy(t, p, strat)

	mustProcess(t, p, NewMarketEvent(day(2), map[types.Asset]types.Bar{aapl: barAt("100")}))

	split := barAt("50")
	split.SplitCoefficient = decimal.NewFromInt(2)
	mustProcess(t, p, NewMarketEvent(day(3), map[types.Asset]types.Bar{aapl: split}))

	if got := strat.Position(aapl); got != 20 {
		t.Fatalf("position = %d, want 20", got)
	}
	bar, _ := p.History().Bar(day(2), aapl)
	if !bar.Close.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("live-mode close = %s, want unchanged 100", bar.Close)
	}
}

func TestMarketEventPaysDividendBeforeSplit(t *testing.T) {
	p := newTestPortfolio(t)
	strat := NewStrategy("alpha", usdCash("0"), []types.Asset{aapl}, nil, nil, nil)
	strat.SetPosition(aapl, 100)
	mustAddStrategy(t, p, strat)

	mustProcess(t, p, NewMarketEvent(day(2), map[types.Asset]types.Bar{aapl: barAt("100")}))

	// One bar carries both corporate actions: the dividend pays on the
	// pre-split share count.
	both := barAt("50")
	both.DividendPerShare = decimal.NewFromInt(1)
	both.SplitCoefficient = decimal.NewFromInt(2)
	mustProcess(t, p, NewMarketEvent(day(3), map[types.Asset]types.Bar{aapl: both}))

	if got := strat.Cash("USD"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("dividend credit = %s, want 100 (pre-split count)", got)
	}
	if got := strat.Position(aapl); got != 200 {
		t.Fatalf("position = %d, want 200", got)
	}
}
