package indicators

import "cryptoSignalWatch/internal/domain"

// RSI computes the Relative Strength Index over period price changes using
// simple rolling means of gains and losses.
//
// The first change has no predecessor and counts as zero for both gain and
// loss, so the first defined value is at index period-1. When the average
// loss is zero the RSI is capped at 100.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		switch {
		case !domain.IsDefined(delta):
			gains[i], losses[i] = domain.Undefined(), domain.Undefined()
		case delta > 0:
			gains[i] = delta
		case delta < 0:
			losses[i] = -delta
		}
	}

	avgGain := RollingMean(gains, period)
	avgLoss := RollingMean(losses, period)

	out := Undefined(n)
	for i := range out {
		g, l := avgGain[i], avgLoss[i]
		if !domain.IsDefined(g) || !domain.IsDefined(l) {
			continue
		}
		if l == 0 {
			out[i] = 100
			continue
		}
		rs := g / l
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// IsOverbought reports whether a defined RSI value is strictly above the threshold.
func IsOverbought(value, threshold float64) bool {
	return domain.IsDefined(value) && value > threshold
}

// IsOversold reports whether a defined RSI value is strictly below the threshold.
func IsOversold(value, threshold float64) bool {
	return domain.IsDefined(value) && value < threshold
}
