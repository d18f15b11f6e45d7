package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the full description of one backtest run.
type Config struct {
	BaseCurrency       string           `mapstructure:"base_currency"`
	Start              string           `mapstructure:"start"`
	End                string           `mapstructure:"end"`
	RiskFreeRate       string           `mapstructure:"risk_free_rate"`
	TradingDaysPerYear int              `mapstructure:"trading_days_per_year"`
	EquityCSV          string           `mapstructure:"equity_csv"`
	Database           DatabaseConfig   `mapstructure:"database"`
	Strategies         []StrategyConfig `mapstructure:"strategies"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// StrategyConfig describes one strategy: its universe, target weights
// per symbol, initial cash per currency, and the momentum lookback its
// signal generator uses.
type StrategyConfig struct {
	Name     string            `mapstructure:"name"`
	Symbols  []string          `mapstructure:"symbols"`
	Weights  map[string]string `mapstructure:"weights"`
	Cash     map[string]string `mapstructure:"cash"`
	Lookback int               `mapstructure:"lookback"`
	Pricing  string            `mapstructure:"pricing"`
}

const (
	PricingMarket     = "market"
	PricingPriorClose = "prior_close"
)

// Load reads and validates the run configuration from a file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("trading_days_per_year", 252)
	v.SetDefault("risk_free_rate", "0")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BaseCurrency == "" {
		return fmt.Errorf("base_currency is required")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.TradingDaysPerYear <= 0 {
		return fmt.Errorf("trading_days_per_year must be positive")
	}
	if _, err := c.StartDate(); err != nil {
		return err
	}
	end, err := c.EndDate()
	if err != nil {
		return err
	}
	start, _ := c.StartDate()
	if end.Before(start) {
		return fmt.Errorf("end %s before start %s", c.End, c.Start)
	}
	if _, err := c.RiskFree(); err != nil {
		return err
	}
	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}

	names := make(map[string]bool, len(c.Strategies))
	for i := range c.Strategies {
		if err := c.Strategies[i].validate(); err != nil {
			return err
		}
		if names[c.Strategies[i].Name] {
			return fmt.Errorf("duplicate strategy name %q", c.Strategies[i].Name)
		}
		names[c.Strategies[i].Name] = true
	}
	return nil
}

func (s *StrategyConfig) validate() error {
	if s.Name == "" {
		return fmt.Errorf("strategy name is required")
	}
	if len(s.Symbols) == 0 {
		return fmt.Errorf("strategy %s: at least one symbol is required", s.Name)
	}
	if len(s.Cash) == 0 {
		return fmt.Errorf("strategy %s: initial cash is required", s.Name)
	}
	if s.Lookback <= 0 {
		return fmt.Errorf("strategy %s: lookback must be positive", s.Name)
	}
	switch s.Pricing {
	case "", PricingMarket, PricingPriorClose:
	default:
		return fmt.Errorf("strategy %s: unknown pricing %q", s.Name, s.Pricing)
	}
	for symbol, weight := range s.Weights {
		if _, err := decimal.NewFromString(weight); err != nil {
			return fmt.Errorf("strategy %s: weight for %s: %w", s.Name, symbol, err)
		}
	}
	for currency, amount := range s.Cash {
		if _, err := decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("strategy %s: cash for %s: %w", s.Name, currency, err)
		}
	}
	return nil
}

func (c *Config) StartDate() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, c.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date (expected YYYY-MM-DD): %w", err)
	}
	return t, nil
}

func (c *Config) EndDate() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, c.End)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid end date (expected YYYY-MM-DD): %w", err)
	}
	return t, nil
}

func (c *Config) RiskFree() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.RiskFreeRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid risk_free_rate: %w", err)
	}
	return rate, nil
}
