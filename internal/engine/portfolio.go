package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"quantsim/internal/analytics"
	"quantsim/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrUnknownStrategy   = errors.New("unknown strategy")
	ErrDuplicateStrategy = errors.New("strategy already registered")
)

// PortfolioConfig carries the run-level settings the portfolio needs at
// construction.
type PortfolioConfig struct {
	BaseCurrency types.Currency
	// Live suppresses retroactive split rescaling of stored history so
	// an attached live feed's record is never rewritten; backtests keep
	// the rescale so the stored series stays continuous.
	Live bool
}

func NewPortfolioConfig(baseCurrency types.Currency, live bool) *PortfolioConfig {
	return &PortfolioConfig{BaseCurrency: baseCurrency, Live: live}
}

// Portfolio is the single-owner aggregate for the whole simulation:
// strategies, accumulated market/fx history, and the equity curve. All
// mutation flows through the event handlers, driven by one goroutine;
// no locking, the single-writer invariant is architectural.
type Portfolio struct {
	hist          *History
	strategies    map[string]*Strategy
	strategyNames []string
	brokerage     Brokerage
	processor     *Processor
	equityCurve   []analytics.EquityPoint
	live          bool
	assetErrors   []error
	log           *zap.Logger
}

func NewPortfolio(cfg *PortfolioConfig, brokerage Brokerage, logger *zap.Logger) *Portfolio {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Portfolio{
		hist:       newHistory(cfg.BaseCurrency),
		strategies: make(map[string]*Strategy),
		brokerage:  brokerage,
		live:       cfg.Live,
		log:        logger,
	}
	p.processor = &Processor{portfolio: p}
	return p
}

// SetBrokerage attaches the execution venue. The brokerage usually
// needs the portfolio's history to price fills, so it is constructed
// after the portfolio and attached before the replay starts.
func (p *Portfolio) SetBrokerage(brokerage Brokerage) {
	p.brokerage = brokerage
}

func (p *Portfolio) AddStrategy(strat *Strategy) error {
	if _, ok := p.strategies[strat.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateStrategy, strat.Name())
	}
	p.strategies[strat.Name()] = strat
	p.strategyNames = append(p.strategyNames, strat.Name())
	sort.Strings(p.strategyNames)
	return nil
}

func (p *Portfolio) Strategy(name string) (*Strategy, error) {
	strat, ok := p.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}
	return strat, nil
}

func (p *Portfolio) Processor() *Processor {
	return p.processor
}

func (p *Portfolio) History() *History {
	return p.hist
}

// EquityCurve returns the recorded per-date total value in base
// currency, one point per processed market date, in replay order.
func (p *Portfolio) EquityCurve() []analytics.EquityPoint {
	return append([]analytics.EquityPoint(nil), p.equityCurve...)
}

// AssetErrors returns the per-asset soft failures collected during the
// run: sizing or pricing gaps that skipped one asset's order without
// aborting its siblings.
func (p *Portfolio) AssetErrors() []error {
	return append([]error(nil), p.assetErrors...)
}

// recordEquity appends one equity point for a processed market date.
func (p *Portfolio) recordEquity(date time.Time) error {
	total, err := p.totalEquity(date)
	if err != nil {
		return fmt.Errorf("value portfolio on %s: %w", date.Format(time.DateOnly), err)
	}
	p.equityCurve = append(p.equityCurve, analytics.EquityPoint{Date: date, Equity: total})
	return nil
}

func (p *Portfolio) totalEquity(date time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, name := range p.strategyNames {
		value, err := p.strategies[name].TotalValue(date, p.hist)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(value)
	}
	return total, nil
}
