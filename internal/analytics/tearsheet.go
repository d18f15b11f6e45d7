package analytics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Tearsheet is the read model derived once from a finished run's equity
// curve. It stores nothing the curve does not already imply.
type Tearsheet struct {
	Start time.Time
	End   time.Time

	InitialEquity decimal.Decimal
	FinalEquity   decimal.Decimal

	CumulativeReturn decimal.Decimal
	AnnualizedReturn decimal.Decimal

	SharpeRatio            decimal.Decimal
	AnnualizedSharpeRatio  decimal.Decimal
	SortinoRatio           decimal.Decimal
	AnnualizedSortinoRatio decimal.Decimal

	MaxDrawdown         decimal.Decimal
	MaxDrawdownDuration int
}

// Compute derives the tearsheet from a chronological equity curve.
// riskFreeRate is per trading period. A series whose volatility is zero
// reports zero for the affected ratio instead of failing the whole
// tearsheet.
func Compute(curve []EquityPoint, riskFreeRate decimal.Decimal, tradingDaysPerYear int) (*Tearsheet, error) {
	if len(curve) == 0 {
		return nil, ErrEmptySeries
	}
	if len(curve) < 2 {
		return nil, ErrInsufficientData
	}
	if tradingDaysPerYear <= 0 {
		return nil, ErrNegativeTradingDays
	}

	returns := DailyReturns(curve)

	cumulative, err := CumulativeReturn(returns)
	if err != nil {
		return nil, err
	}
	annualized, err := AnnualizedReturn(returns, tradingDaysPerYear)
	if err != nil {
		return nil, err
	}

	sharpe, err := ratioOrZero(SharpeRatio(returns, riskFreeRate))
	if err != nil {
		return nil, err
	}
	annualSharpe, err := ratioOrZero(AnnualizedSharpeRatio(returns, riskFreeRate, tradingDaysPerYear))
	if err != nil {
		return nil, err
	}
	sortino, err := ratioOrZero(SortinoRatio(returns, riskFreeRate))
	if err != nil {
		return nil, err
	}
	annualSortino, err := ratioOrZero(AnnualizedSortinoRatio(returns, riskFreeRate, tradingDaysPerYear))
	if err != nil {
		return nil, err
	}

	drawdowns, err := DrawdownAnalysis(curve)
	if err != nil {
		return nil, err
	}

	return &Tearsheet{
		Start:                  curve[0].Date,
		End:                    curve[len(curve)-1].Date,
		InitialEquity:          curve[0].Equity,
		FinalEquity:            curve[len(curve)-1].Equity,
		CumulativeReturn:       cumulative,
		AnnualizedReturn:       annualized,
		SharpeRatio:            sharpe,
		AnnualizedSharpeRatio:  annualSharpe,
		SortinoRatio:           sortino,
		AnnualizedSortinoRatio: annualSortino,
		MaxDrawdown:            drawdowns.MaxDrawdown,
		MaxDrawdownDuration:    drawdowns.MaxDrawdownDuration,
	}, nil
}

// DailyReturns converts an equity curve into period-over-period
// returns. A curve of n points yields n-1 returns.
func DailyReturns(curve []EquityPoint) []decimal.Decimal {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]decimal.Decimal, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		returns = append(returns, curve[i].Equity.Div(curve[i-1].Equity).Sub(one))
	}
	return returns
}

func ratioOrZero(ratio decimal.Decimal, err error) (decimal.Decimal, error) {
	if errors.Is(err, ErrZeroVolatility) {
		return decimal.Zero, nil
	}
	return ratio, err
}
