package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSeries reports a series that is empty or not strictly time-ordered.
var ErrInvalidSeries = errors.New("bar series is invalid")

// Bar represents a single OHLCV observation for a fixed time interval.
type Bar struct {
	Timestamp time.Time // Open time of the interval
	Open      float64   // Opening price
	High      float64   // Highest price
	Low       float64   // Lowest price
	Close     float64   // Closing price
	Volume    float64   // Trading volume
}

// BarSeries is the ordered set of bars for one symbol/timeframe/exchange.
// It is fetched as a whole and never merged with a previous fetch.
type BarSeries struct {
	Symbol    string
	Timeframe string
	Exchange  string
	Bars      []*Bar
}

// Len returns the number of bars in the series.
func (s *BarSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Last returns the most recent bar, or nil for an empty series.
func (s *BarSeries) Last() *Bar {
	if s.Len() == 0 {
		return nil
	}
	return s.Bars[len(s.Bars)-1]
}

// Validate checks that the series is non-empty and that timestamps are strictly increasing.
func (s *BarSeries) Validate() error {
	if s.Len() == 0 {
		return fmt.Errorf("%w: series for %s %s is empty", ErrInvalidSeries, s.symbol(), s.timeframe())
	}
	for i, b := range s.Bars {
		if b == nil {
			return fmt.Errorf("%w: bar %d is nil", ErrInvalidSeries, i)
		}
		if i > 0 && !b.Timestamp.After(s.Bars[i-1].Timestamp) {
			return fmt.Errorf("%w: bar %d timestamp %s is not after %s", ErrInvalidSeries, i, b.Timestamp.Format(time.RFC3339), s.Bars[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// Closes returns the close prices in series order.
func (s *BarSeries) Closes() []float64 {
	return s.extract(func(b *Bar) float64 { return b.Close })
}

// Highs returns the high prices in series order.
func (s *BarSeries) Highs() []float64 {
	return s.extract(func(b *Bar) float64 { return b.High })
}

// Lows returns the low prices in series order.
func (s *BarSeries) Lows() []float64 {
	return s.extract(func(b *Bar) float64 { return b.Low })
}

func (s *BarSeries) extract(fn func(b *Bar) float64) []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = fn(s.Bars[i])
	}
	return out
}

func (s *BarSeries) symbol() string {
	if s == nil {
		return ""
	}
	return s.Symbol
}

func (s *BarSeries) timeframe() string {
	if s == nil {
		return ""
	}
	return s.Timeframe
}
