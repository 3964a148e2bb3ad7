package indicators

import (
	"github.com/markcheno/go-talib"

	"cryptoSignalWatch/internal/domain"
)

// MovingAverageType defines the type of moving average
type MovingAverageType string

const (
	// SimpleMovingAverage represents a simple moving average
	SimpleMovingAverage MovingAverageType = "SMA"
	// ExponentialMovingAverage represents an exponential moving average
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// MovingAverage dispatches to SMA or EMA by type. For EMA the period is the span.
// Unknown types yield an all-undefined series.
func MovingAverage(values []float64, period int, maType MovingAverageType) []float64 {
	switch maType {
	case SimpleMovingAverage:
		return SMA(values, period)
	case ExponentialMovingAverage:
		return EMA(values, period)
	default:
		return Undefined(len(values))
	}
}

// SMA computes the simple moving average over period values.
// Indices before period-1 are undefined.
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return Undefined(len(values))
	}
	if hasUndefined(values) {
		return RollingMean(values, period)
	}
	return trimLookback(talib.Sma(values, period), period)
}

// EMA computes the exponential moving average with smoothing factor 2/(span+1).
// The average is seeded with the first defined value, so every index from
// there on is defined; an undefined input leaves its own index undefined
// without resetting the average.
func EMA(values []float64, span int) []float64 {
	out := Undefined(len(values))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	ema := domain.Undefined()
	for i, v := range values {
		if !domain.IsDefined(v) {
			continue
		}
		if !domain.IsDefined(ema) {
			ema = v
		} else {
			ema = alpha*v + (1-alpha)*ema
		}
		out[i] = ema
	}
	return out
}
