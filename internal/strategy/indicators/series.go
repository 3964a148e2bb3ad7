package indicators

import (
	"math"
	"sort"

	"github.com/markcheno/go-talib"

	"cryptoSignalWatch/internal/domain"
)

// Undefined returns a slice of n undefined values.
func Undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = domain.Undefined()
	}
	return out
}

func hasUndefined(values []float64) bool {
	for _, v := range values {
		if !domain.IsDefined(v) {
			return true
		}
	}
	return false
}

// rolling applies fn to every full trailing window. A window that is not yet
// full, or that contains an undefined value, yields an undefined result.
func rolling(values []float64, window int, fn func(win []float64) float64) []float64 {
	out := Undefined(len(values))
	if window <= 0 {
		return out
	}
	lastUndefined := -1
	for i, v := range values {
		if !domain.IsDefined(v) {
			lastUndefined = i
		}
		if i < window-1 || lastUndefined > i-window {
			continue
		}
		out[i] = fn(values[i-window+1 : i+1])
	}
	return out
}

// RollingMean is the trailing arithmetic mean over window values.
// Each window is summed directly so an all-zero window stays exactly zero.
func RollingMean(values []float64, window int) []float64 {
	return rolling(values, window, mean)
}

// RollingStd is the trailing sample standard deviation (n-1 denominator).
func RollingStd(values []float64, window int) []float64 {
	return rolling(values, window, sampleStd)
}

// RollingQuantile is the trailing q-quantile with linear interpolation between order statistics.
func RollingQuantile(values []float64, window int, q float64) []float64 {
	return rolling(values, window, func(win []float64) float64 {
		return quantile(win, q)
	})
}

// RollingMax is the trailing maximum over window values.
func RollingMax(values []float64, window int) []float64 {
	if window < 2 || hasUndefined(values) {
		return rolling(values, window, func(win []float64) float64 {
			m := win[0]
			for _, v := range win[1:] {
				m = math.Max(m, v)
			}
			return m
		})
	}
	return trimLookback(talib.Max(values, window), window)
}

// RollingMin is the trailing minimum over window values.
func RollingMin(values []float64, window int) []float64 {
	if window < 2 || hasUndefined(values) {
		return rolling(values, window, func(win []float64) float64 {
			m := win[0]
			for _, v := range win[1:] {
				m = math.Min(m, v)
			}
			return m
		})
	}
	return trimLookback(talib.Min(values, window), window)
}

// trimLookback replaces the lookback prefix that ta-lib fills with zeros by undefined values.
func trimLookback(raw []float64, window int) []float64 {
	out := Undefined(len(raw))
	for i := window - 1; i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// PctChange returns the simple return of each value relative to its predecessor.
// The first value, undefined inputs and zero predecessors yield undefined.
func PctChange(values []float64) []float64 {
	out := Undefined(len(values))
	for i := 1; i < len(values); i++ {
		prev, cur := values[i-1], values[i]
		if !domain.IsDefined(prev) || !domain.IsDefined(cur) || prev == 0 {
			continue
		}
		out[i] = cur/prev - 1
	}
	return out
}

// ShiftForward moves every value k rows later: out[i] = values[i-k].
func ShiftForward(values []float64, k int) []float64 {
	out := Undefined(len(values))
	for i := k; i < len(values); i++ {
		if i-k >= 0 {
			out[i] = values[i-k]
		}
	}
	return out
}

// ShiftBackward moves every value k rows earlier: out[i] = values[i+k].
func ShiftBackward(values []float64, k int) []float64 {
	out := Undefined(len(values))
	for i := 0; i+k < len(values); i++ {
		if i+k >= 0 {
			out[i] = values[i+k]
		}
	}
	return out
}

// Mean returns the mean of the defined values, or undefined when there are none.
func Mean(values []float64) float64 {
	return mean(defined(values))
}

// SampleStd returns the sample standard deviation of the defined values.
// Fewer than two defined values yield undefined.
func SampleStd(values []float64) float64 {
	return sampleStd(defined(values))
}

// Min returns the smallest defined value, or undefined when there are none.
func Min(values []float64) float64 {
	m := domain.Undefined()
	for _, v := range values {
		if domain.IsDefined(v) && (!domain.IsDefined(m) || v < m) {
			m = v
		}
	}
	return m
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

func mean(values []float64) float64 {
	if len(values) == 0 {
		return domain.Undefined()
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return domain.Undefined()
	}
	m := mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return domain.Undefined()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
