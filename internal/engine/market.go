package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// handleMarket merges one date's bar batch and runs the per-date
// sequence: dividends, splits, then signal generation. Order matters:
// dividends pay on pre-split share counts recorded before this batch,
// and strategies see a fully merged history when they generate.
func (p *Portfolio) handleMarket(ctx context.Context, ev MarketEvent) error {
	assets := sortedAssets(ev.Bars)

	if err := p.hist.merge(ev.Date, ev.Bars); err != nil {
		return err
	}

	for _, asset := range assets {
		bar := ev.Bars[asset]
		if !bar.HasDividend() {
			continue
		}
		if err := p.processor.Process(ctx, NewDividendEvent(ev.Date, asset, bar.DividendPerShare)); err != nil {
			return err
		}
	}

	for _, asset := range assets {
		bar := ev.Bars[asset]
		if !bar.HasSplit() {
			continue
		}
		coefficient := bar.SplitCoefficient
		for _, name := range p.strategyNames {
			strat := p.strategies[name]
			oldQty := strat.Position(asset)
			if oldQty == 0 {
				continue
			}
			// IntPart truncates toward zero, matching the fractional-
			// share rounding policy.
			newQty := decimal.NewFromInt(oldQty).Mul(coefficient).IntPart()
			strat.SetPosition(asset, newQty)
			p.log.Info("split applied",
				zap.String("strategy", name),
				zap.String("asset", asset.String()),
				zap.String("coefficient", coefficient.String()),
				zap.Int64("old_quantity", oldQty),
				zap.Int64("new_quantity", newQty),
			)
		}
		if !p.live {
			p.hist.rescaleBefore(asset, ev.Date, coefficient)
		}
	}

	for _, name := range p.strategyNames {
		strat := p.strategies[name]
		if strat.signals == nil {
			continue
		}
		signals, err := strat.signals.GenerateSignals(ev.Date, strat, p.hist)
		if err != nil {
			return fmt.Errorf("generate signals for %s: %w", name, err)
		}
		if len(signals) == 0 {
			continue
		}
		if err := p.processor.Process(ctx, NewSignalEvent(ev.Date, name, signals)); err != nil {
			return err
		}
	}

	return nil
}
