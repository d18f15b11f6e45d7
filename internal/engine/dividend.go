package engine

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// handleDividend credits dividendPerShare times the held quantity, in
// the asset's native currency, to every strategy long the asset.
// Repeated dividend events for the same asset and date each apply in
// full; deduplication is deliberately not this handler's job.
func (p *Portfolio) handleDividend(_ context.Context, ev DividendEvent) error {
	for _, name := range p.strategyNames {
		strat := p.strategies[name]
		qty := strat.Position(ev.Asset)
		if qty <= 0 {
			continue
		}
		credit := ev.DividendPerShare.Mul(decimal.NewFromInt(qty))
		strat.UpdateCash(strat.currencyFor(ev.Asset), credit)
		p.log.Debug("dividend credited",
			zap.String("strategy", name),
			zap.String("asset", ev.Asset.String()),
			zap.Int64("quantity", qty),
			zap.String("credit", credit.String()),
		)
	}
	return nil
}
