package engine

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// handleFill applies an execution to the owning strategy. Quantity is
// signed, so one cash rule covers both directions: a sell's negative
// trade value credits cash, and commission always debits.
func (p *Portfolio) handleFill(_ context.Context, ev FillEvent) error {
	strat, err := p.Strategy(ev.Strategy)
	if err != nil {
		return err
	}

	strat.UpdatePosition(ev.Asset, ev.Quantity)

	tradeValue := ev.FillPrice.Mul(decimal.NewFromInt(ev.Quantity))
	tradeCost := tradeValue.Add(ev.Commission)
	strat.UpdateCash(strat.currencyFor(ev.Asset), tradeCost.Neg())

	p.log.Debug("fill applied",
		zap.String("strategy", ev.Strategy),
		zap.String("asset", ev.Asset.String()),
		zap.Int64("quantity", ev.Quantity),
		zap.String("fill_price", ev.FillPrice.String()),
		zap.String("commission", ev.Commission.String()),
	)
	return nil
}
