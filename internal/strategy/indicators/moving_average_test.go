package indicators

import (
	"math"
	"testing"
)

func TestMovingAverage(t *testing.T) {
	closes := []float64{100.0, 102.0, 101.0, 103.0, 104.0}
	nan := math.NaN()

	tests := []struct {
		name     string
		period   int
		maType   MovingAverageType
		values   []float64
		expected []float64
	}{
		{
			name:     "SMA with sufficient data",
			period:   3,
			maType:   SimpleMovingAverage,
			values:   closes,
			expected: []float64{nan, nan, 101.0, 102.0, 102.666667},
		},
		{
			name:     "EMA seeded with first value",
			period:   3, // alpha = 0.5
			maType:   ExponentialMovingAverage,
			values:   closes,
			expected: []float64{100.0, 101.0, 101.0, 102.0, 103.0},
		},
		{
			name:     "SMA insufficient data is undefined",
			period:   6,
			maType:   SimpleMovingAverage,
			values:   closes,
			expected: []float64{nan, nan, nan, nan, nan},
		},
		{
			name:     "Invalid MA type",
			period:   3,
			maType:   "INVALID",
			values:   closes,
			expected: []float64{nan, nan, nan, nan, nan},
		},
		{
			name:     "SMA skips windows with undefined input",
			period:   2,
			maType:   SimpleMovingAverage,
			values:   []float64{1, nan, 3, 5},
			expected: []float64{nan, nan, nan, 4},
		},
		{
			name:     "EMA seeds at first defined value",
			period:   3,
			maType:   ExponentialMovingAverage,
			values:   []float64{nan, 10, 20},
			expected: []float64{nan, 10, 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.values, tt.period, tt.maType)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d values, got %d", len(tt.expected), len(got))
			}
			for i := range got {
				want := tt.expected[i]
				if math.IsNaN(want) {
					if !math.IsNaN(got[i]) {
						t.Errorf("index %d: expected undefined, got %f", i, got[i])
					}
					continue
				}
				// Allow for small floating point differences
				if math.Abs(got[i]-want) > 0.0001 {
					t.Errorf("index %d: expected %f, got %f", i, want, got[i])
				}
			}
		})
	}
}

func TestSMA_ConstantSeriesIsExact(t *testing.T) {
	values := make([]float64, 250)
	for i := range values {
		values[i] = 100.0
	}
	sma := SMA(values, 200)
	for i := 199; i < len(sma); i++ {
		if sma[i] != 100.0 {
			t.Fatalf("index %d: expected exactly 100, got %v", i, sma[i])
		}
	}
}
