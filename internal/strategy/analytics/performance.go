package analytics

import (
	"math"

	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/strategy/indicators"
)

// TradingDays is the number of periods used to annualise returns.
const TradingDays = 252

// DefaultRiskFreeRate is the annual risk-free rate subtracted from returns.
const DefaultRiskFreeRate = 0.02

// ComputePerformance calculates the whole-history risk-adjusted ratios of a
// close series. maxDrawdown is the drawdown column of the same series.
// A ratio is undefined when its divisor is zero or cannot be computed.
func ComputePerformance(closes, maxDrawdown []float64, riskFreeRate float64) domain.PerformanceSummary {
	summary := domain.UndefinedSummary()

	returns := defined(indicators.PctChange(closes))
	if len(returns) == 0 {
		return summary
	}

	periodRate := riskFreeRate / TradingDays
	excess := make([]float64, len(returns))
	downside := make([]float64, 0, len(returns))
	for i, r := range returns {
		excess[i] = r - periodRate
		if excess[i] < 0 {
			downside = append(downside, excess[i])
		}
	}

	annualise := math.Sqrt(TradingDays)
	meanExcess := indicators.Mean(excess)
	summary.Sharpe = ratio(meanExcess, indicators.SampleStd(excess)) * annualise
	summary.Sortino = ratio(meanExcess, indicators.SampleStd(downside)) * annualise

	worst := indicators.Min(maxDrawdown)
	summary.Calmar = ratio(indicators.Mean(returns)*TradingDays, math.Abs(worst))

	return summary
}

// zeroTolerance is the magnitude below which a divisor counts as zero. The
// deviation of identical returns comes out as rounding noise, not exactly 0.
const zeroTolerance = 1e-12

// ratio divides a by b, yielding undefined for an undefined or zero divisor.
func ratio(a, b float64) float64 {
	if !domain.IsDefined(a) || !domain.IsDefined(b) || math.Abs(b) < zeroTolerance {
		return domain.Undefined()
	}
	return a / b
}

func defined(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if domain.IsDefined(v) {
			out = append(out, v)
		}
	}
	return out
}
