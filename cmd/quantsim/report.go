package main

import (
	"fmt"
	"time"

	"quantsim/internal/analytics"
	"quantsim/internal/config"
	"quantsim/internal/engine"
)

func printTearsheet(t *analytics.Tearsheet) {
	fmt.Println("===== Backtest Tearsheet =====")
	fmt.Printf("Period:                 %s to %s\n", t.Start.Format(time.DateOnly), t.End.Format(time.DateOnly))
	fmt.Printf("Initial Equity:         %s\n", t.InitialEquity)
	fmt.Printf("Final Equity:           %s\n", t.FinalEquity)

	fmt.Println("\n-- Returns --")
	fmt.Printf("Cumulative Return:      %s\n", t.CumulativeReturn)
	fmt.Printf("Annualized Return:      %s\n", t.AnnualizedReturn)

	fmt.Println("\n-- Risk-Adjusted Metrics --")
	fmt.Printf("Sharpe Ratio:           %s\n", t.SharpeRatio)
	fmt.Printf("Annualized Sharpe:      %s\n", t.AnnualizedSharpeRatio)
	fmt.Printf("Sortino Ratio:          %s\n", t.SortinoRatio)
	fmt.Printf("Annualized Sortino:     %s\n", t.AnnualizedSortinoRatio)

	fmt.Println("\n-- Drawdown --")
	fmt.Printf("Max Drawdown:           %s\n", t.MaxDrawdown)
	fmt.Printf("Max Drawdown Duration:  %d days\n", t.MaxDrawdownDuration)

	fmt.Println("==============================")
}

func printTerminalState(portfolio *engine.Portfolio, cfg *config.Config) {
	fmt.Println("\n===== Terminal State =====")
	for i := range cfg.Strategies {
		strat, err := portfolio.Strategy(cfg.Strategies[i].Name)
		if err != nil {
			continue
		}
		fmt.Printf("Strategy: %s\n", strat.Name())
		for asset, qty := range strat.Positions() {
			if qty == 0 {
				continue
			}
			fmt.Printf("  %-12s %d\n", asset, qty)
		}
		for currency, amount := range strat.CashBalances() {
			fmt.Printf("  cash %-7s %s\n", currency, amount)
		}
	}
	if skipped := portfolio.AssetErrors(); len(skipped) > 0 {
		fmt.Printf("\n%d signal batches had skipped assets; see logs\n", len(skipped))
	}
	fmt.Println("==========================")
}
