package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"quantsim/internal/analytics"
	"quantsim/internal/brokerage"
	"quantsim/internal/config"
	"quantsim/internal/engine"
	"quantsim/internal/repository"
	"quantsim/strategies/momentum"
	"quantsim/types"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var live bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest",
	Long:  "Replay the configured date range through every strategy and print a tearsheet",
	RunE:  runBacktest,
}

func init() {
	runCmd.Flags().BoolVar(&live, "live", false, "treat the data feed as live (no retroactive split rescaling)")
	rootCmd.AddCommand(runCmd)
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// A cancelled run leaves the portfolio mid-replay; its state is
	// discarded along with the process.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	db, err := repository.NewDatabase(ctx, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	portfolio := engine.NewPortfolio(
		engine.NewPortfolioConfig(types.Currency(cfg.BaseCurrency), live),
		nil,
		logger,
	)
	portfolio.SetBrokerage(brokerage.NewSim(portfolio.History(), logger))

	for i := range cfg.Strategies {
		strat, err := buildStrategy(ctx, db, &cfg.Strategies[i])
		if err != nil {
			return err
		}
		if err := portfolio.AddStrategy(strat); err != nil {
			return err
		}
	}

	start, _ := cfg.StartDate()
	end, _ := cfg.EndDate()

	bt := engine.NewBacktest(portfolio, db, db, logger)
	if err := bt.Run(ctx, start, end); err != nil {
		return err
	}

	riskFree, _ := cfg.RiskFree()
	curve := portfolio.EquityCurve()
	tearsheet, err := analytics.Compute(curve, riskFree, cfg.TradingDaysPerYear)
	if err != nil {
		return fmt.Errorf("compute tearsheet: %w", err)
	}

	printTearsheet(tearsheet)
	printTerminalState(portfolio, cfg)

	if cfg.EquityCSV != "" {
		if err := analytics.WriteEquityCSVFile(cfg.EquityCSV, curve); err != nil {
			return err
		}
		logger.Info("equity curve written", zap.String("path", cfg.EquityCSV))
	}
	return nil
}

func buildStrategy(ctx context.Context, db *repository.Database, sc *config.StrategyConfig) (*engine.Strategy, error) {
	universe, err := db.AssetsBySymbols(ctx, sc.Symbols)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", sc.Name, err)
	}

	bySymbol := make(map[string]types.Asset, len(universe))
	for _, asset := range universe {
		bySymbol[asset.Symbol] = asset
	}

	weights := make(map[types.Asset]decimal.Decimal, len(sc.Weights))
	for symbol, raw := range sc.Weights {
		asset, ok := bySymbol[symbol]
		if !ok {
			return nil, fmt.Errorf("strategy %s: weight for unknown symbol %s", sc.Name, symbol)
		}
		weights[asset] = decimal.RequireFromString(raw)
	}

	cash := make(map[types.Currency]decimal.Decimal, len(sc.Cash))
	for currency, raw := range sc.Cash {
		cash[types.Currency(currency)] = decimal.RequireFromString(raw)
	}

	var pricer engine.OrderPriceCalculator
	switch sc.Pricing {
	case config.PricingMarket:
		pricer = engine.MarketOrderCalculator{}
	default:
		pricer = engine.PriorCloseLimitCalculator{}
	}

	return engine.NewStrategy(
		sc.Name,
		cash,
		universe,
		engine.NewFixedWeightSizer(weights),
		pricer,
		momentum.New(sc.Lookback),
	), nil
}

func newLogger() (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
