package engine

import (
	"context"
	"errors"
	"fmt"

	"quantsim/types"

	"go.uber.org/zap"
)

// handleSignal sizes the whole signal batch in one call, then emits one
// order per asset whose desired size differs from the current position.
// Failures sizing or pricing one asset are collected and reported, not
// fatal to the rest of the batch.
func (p *Portfolio) handleSignal(ctx context.Context, ev SignalEvent) error {
	strat, err := p.Strategy(ev.Strategy)
	if err != nil {
		return err
	}

	var soft []error

	sizes, sizeErr := strat.sizer.ComputeSizes(ev.Date, ev.Signals, strat, p.hist)
	if sizeErr != nil {
		if sizes == nil {
			// Whole-batch valuation failure: nothing can trade today,
			// but the run continues.
			p.reportAssetErrors(ev, fmt.Errorf("size signals: %w", sizeErr))
			return nil
		}
		soft = append(soft, sizeErr)
	}

	for _, asset := range sortedAssets(ev.Signals) {
		desired, ok := sizes[asset]
		if !ok {
			continue
		}
		orderSize := desired - strat.Position(asset)
		if orderSize == 0 {
			continue
		}

		action := types.ActionBuy
		quantity := orderSize
		if orderSize < 0 {
			action = types.ActionSell
			quantity = -orderSize
		}

		pricing, err := strat.pricer.CalculatePrices(ev.Date, asset, action, p.hist)
		if err != nil {
			soft = append(soft, fmt.Errorf("price %s: %w", asset, err))
			continue
		}

		order := NewOrderEvent(ev.Date, ev.Strategy, asset, action, pricing, quantity)
		if err := p.processor.Process(ctx, order); err != nil {
			soft = append(soft, fmt.Errorf("submit %s: %w", asset, err))
		}
	}

	if len(soft) > 0 {
		p.reportAssetErrors(ev, errors.Join(soft...))
	}
	return nil
}

func (p *Portfolio) reportAssetErrors(ev SignalEvent, err error) {
	p.assetErrors = append(p.assetErrors, fmt.Errorf("%s %s: %w", ev.Strategy, ev.Date.Format("2006-01-02"), err))
	p.log.Warn("signal batch incomplete",
		zap.String("strategy", ev.Strategy),
		zap.Time("date", ev.Date),
		zap.Error(err),
	)
}
