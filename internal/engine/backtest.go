package engine

import (
	"context"
	"fmt"
	"time"

	"quantsim/types"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Backtest replays a historical date range through the portfolio's
// event processor: one market event per date, then any fills the
// brokerage settled for that date, then one equity snapshot. A single
// goroutine drives the whole loop; cancellation is checked between
// dates only, and a cancelled run's portfolio state must be discarded
// by the caller.
type Backtest struct {
	portfolio  *Portfolio
	marketData MarketDataSource
	fxRates    FxRateSource
	log        *zap.Logger
}

func NewBacktest(portfolio *Portfolio, marketData MarketDataSource, fxRates FxRateSource, logger *zap.Logger) *Backtest {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backtest{
		portfolio:  portfolio,
		marketData: marketData,
		fxRates:    fxRates,
		log:        logger,
	}
}

func (b *Backtest) Run(ctx context.Context, start, end time.Time) error {
	assets, currencies := b.universe()

	batches, err := b.marketData.BarBatches(ctx, assets, start, end)
	if err != nil {
		return fmt.Errorf("load market data: %w", err)
	}
	rates, err := b.fxRates.Rates(ctx, currencies, start, end)
	if err != nil {
		return fmt.Errorf("load fx rates: %w", err)
	}
	b.portfolio.History().MergeFxRates(rates)

	b.log.Info("replay starting",
		zap.Int("dates", len(batches)),
		zap.Int("assets", len(assets)),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	bar := initProgressBar(len(batches))
	processor := b.portfolio.Processor()

	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := processor.Process(ctx, NewMarketEvent(batch.Date, batch.Bars)); err != nil {
			return fmt.Errorf("market event %s: %w", batch.Date.Format(time.DateOnly), err)
		}

		if source, ok := b.portfolio.brokerage.(FillSource); ok {
			for _, fill := range source.PendingFills() {
				if err := processor.Process(ctx, fill); err != nil {
					return fmt.Errorf("fill event %s %s: %w", batch.Date.Format(time.DateOnly), fill.Asset, err)
				}
			}
		}

		if err := b.portfolio.recordEquity(batch.Date); err != nil {
			return err
		}
		bar.Add(1)
	}

	b.log.Info("replay finished",
		zap.Int("equity_points", len(b.portfolio.equityCurve)),
		zap.Int("skipped_asset_batches", len(b.portfolio.assetErrors)),
	)
	return nil
}

// universe collects the tracked assets and referenced currencies across
// all registered strategies.
func (b *Backtest) universe() ([]types.Asset, []types.Currency) {
	assetSet := make(map[types.Asset]struct{})
	currencySet := map[types.Currency]struct{}{
		b.portfolio.History().BaseCurrency(): {},
	}
	for _, name := range b.portfolio.strategyNames {
		strat := b.portfolio.strategies[name]
		for _, asset := range strat.Assets() {
			assetSet[asset] = struct{}{}
			currencySet[asset.Currency] = struct{}{}
		}
		for currency := range strat.cash {
			currencySet[currency] = struct{}{}
		}
	}

	return sortedAssets(assetSet), sortedCurrencies(currencySet)
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Replaying market history..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
