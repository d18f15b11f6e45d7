package analytics

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Global error declarations.
var (
	ErrEmptySeries         = errors.New("empty return series")
	ErrInsufficientData    = errors.New("not enough observations")
	ErrNegativeTradingDays = errors.New("trading days per year must be positive")
	ErrInvalidDailyReturn  = errors.New("daily return below -1")
	ErrZeroVolatility      = errors.New("zero volatility in return series")
)

// VarianceMode selects the divisor used by Variance and
// StandardDeviation.
type VarianceMode int

const (
	Population VarianceMode = iota
	Sample
)

var one = decimal.NewFromInt(1)

// Average returns the arithmetic mean of values.
func Average(values []decimal.Decimal) (decimal.Decimal, error) {
	if len(values) == 0 {
		return decimal.Zero, ErrEmptySeries
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))), nil
}

// Variance returns the population or sample variance of values. Sample
// variance needs at least two observations.
func Variance(values []decimal.Decimal, mode VarianceMode) (decimal.Decimal, error) {
	if len(values) == 0 {
		return decimal.Zero, ErrEmptySeries
	}
	if mode == Sample && len(values) == 1 {
		return decimal.Zero, ErrInsufficientData
	}
	mean, err := Average(values)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, v := range values {
		diff := v.Sub(mean)
		sum = sum.Add(diff.Mul(diff))
	}
	n := int64(len(values))
	if mode == Sample {
		n--
	}
	return sum.Div(decimal.NewFromInt(n)), nil
}

// StandardDeviation is the square root of the variance. The square root
// is the one unavoidable float64 excursion; the result is converted
// straight back to decimal.
func StandardDeviation(values []decimal.Decimal, mode VarianceMode) (decimal.Decimal, error) {
	variance, err := Variance(values, mode)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64())), nil
}

// SharpeRatio is the mean excess return over the risk-free rate divided
// by the sample standard deviation of returns.
func SharpeRatio(returns []decimal.Decimal, riskFreeRate decimal.Decimal) (decimal.Decimal, error) {
	mean, err := Average(returns)
	if err != nil {
		return decimal.Zero, err
	}
	stddev, err := StandardDeviation(returns, Sample)
	if err != nil {
		return decimal.Zero, err
	}
	if stddev.IsZero() {
		return decimal.Zero, ErrZeroVolatility
	}
	return mean.Sub(riskFreeRate).Div(stddev), nil
}

// AnnualizedSharpeRatio scales the per-period Sharpe ratio by the
// square root of the number of trading periods per year.
func AnnualizedSharpeRatio(returns []decimal.Decimal, riskFreeRate decimal.Decimal, tradingDaysPerYear int) (decimal.Decimal, error) {
	if tradingDaysPerYear <= 0 {
		return decimal.Zero, ErrNegativeTradingDays
	}
	sharpe, err := SharpeRatio(returns, riskFreeRate)
	if err != nil {
		return decimal.Zero, err
	}
	return sharpe.Mul(decimal.NewFromFloat(math.Sqrt(float64(tradingDaysPerYear)))), nil
}

// DownsideDeviation is the root mean square of returns below the
// risk-free rate. The average runs over every observation, not just the
// negative ones.
func DownsideDeviation(returns []decimal.Decimal, riskFreeRate decimal.Decimal) (decimal.Decimal, error) {
	if len(returns) == 0 {
		return decimal.Zero, ErrEmptySeries
	}
	sum := decimal.Zero
	for _, r := range returns {
		excess := r.Sub(riskFreeRate)
		if excess.IsNegative() {
			sum = sum.Add(excess.Mul(excess))
		}
	}
	meanSquare := sum.Div(decimal.NewFromInt(int64(len(returns))))
	return decimal.NewFromFloat(math.Sqrt(meanSquare.InexactFloat64())), nil
}

// SortinoRatio is the mean excess return divided by the downside
// deviation.
func SortinoRatio(returns []decimal.Decimal, riskFreeRate decimal.Decimal) (decimal.Decimal, error) {
	mean, err := Average(returns)
	if err != nil {
		return decimal.Zero, err
	}
	downside, err := DownsideDeviation(returns, riskFreeRate)
	if err != nil {
		return decimal.Zero, err
	}
	if downside.IsZero() {
		return decimal.Zero, ErrZeroVolatility
	}
	return mean.Sub(riskFreeRate).Div(downside), nil
}

// AnnualizedSortinoRatio scales the per-period Sortino ratio by the
// square root of the number of trading periods per year.
func AnnualizedSortinoRatio(returns []decimal.Decimal, riskFreeRate decimal.Decimal, tradingDaysPerYear int) (decimal.Decimal, error) {
	if tradingDaysPerYear <= 0 {
		return decimal.Zero, ErrNegativeTradingDays
	}
	sortino, err := SortinoRatio(returns, riskFreeRate)
	if err != nil {
		return decimal.Zero, err
	}
	return sortino.Mul(decimal.NewFromFloat(math.Sqrt(float64(tradingDaysPerYear)))), nil
}

// CumulativeReturn compounds the daily returns into a single total
// return.
func CumulativeReturn(returns []decimal.Decimal) (decimal.Decimal, error) {
	if len(returns) == 0 {
		return decimal.Zero, ErrEmptySeries
	}
	product := one
	for _, r := range returns {
		if r.LessThan(one.Neg()) {
			return decimal.Zero, ErrInvalidDailyReturn
		}
		product = product.Mul(one.Add(r))
	}
	return product.Sub(one), nil
}

// AnnualizedReturn converts the compounded return over the series into
// a yearly growth rate.
func AnnualizedReturn(returns []decimal.Decimal, tradingDaysPerYear int) (decimal.Decimal, error) {
	if tradingDaysPerYear <= 0 {
		return decimal.Zero, ErrNegativeTradingDays
	}
	cumulative, err := CumulativeReturn(returns)
	if err != nil {
		return decimal.Zero, err
	}
	exponent := float64(tradingDaysPerYear) / float64(len(returns))
	grown := math.Pow(one.Add(cumulative).InexactFloat64(), exponent)
	return decimal.NewFromFloat(grown).Sub(one), nil
}

// EquityCurve compounds the daily returns onto an initial investment.
// The result has one more element than returns, starting at the
// initial investment itself.
func EquityCurve(returns []decimal.Decimal, initialInvestment decimal.Decimal) ([]decimal.Decimal, error) {
	if len(returns) == 0 {
		return nil, ErrEmptySeries
	}
	curve := make([]decimal.Decimal, 0, len(returns)+1)
	curve = append(curve, initialInvestment)
	equity := initialInvestment
	for _, r := range returns {
		if r.LessThan(one.Neg()) {
			return nil, ErrInvalidDailyReturn
		}
		equity = equity.Mul(one.Add(r))
		curve = append(curve, equity)
	}
	return curve, nil
}
