package risk

import (
	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/strategy/indicators"
)

// Config holds configuration for the tail-risk statistics
type Config struct {
	Window     int     // trailing window, e.g., 252
	Confidence float64 // e.g., 0.95
}

// DefaultConfig returns the standard one-year window at 95% confidence.
func DefaultConfig() Config {
	return Config{
		Window:     252,
		Confidence: 0.95,
	}
}

// Engine derives value-at-risk, expected shortfall and drawdown columns
// from a close series.
type Engine struct {
	cfg Config
}

// NewEngine creates a new risk engine instance
func NewEngine(cfg Config) *Engine {
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.Confidence <= 0 || cfg.Confidence >= 1 {
		cfg.Confidence = DefaultConfig().Confidence
	}
	return &Engine{cfg: cfg}
}

// Window returns the trailing window length.
func (e *Engine) Window() int {
	return e.cfg.Window
}

// Compute returns the var_95, es_95 and max_drawdown columns for closes.
func (e *Engine) Compute(closes []float64) indicators.Columns {
	returns := indicators.PctChange(closes)
	valueAtRisk := indicators.RollingQuantile(returns, e.cfg.Window, 1-e.cfg.Confidence)

	return indicators.Columns{
		domain.FieldVaR95:       valueAtRisk,
		domain.FieldES95:        e.expectedShortfall(returns, valueAtRisk),
		domain.FieldMaxDrawdown: e.maxDrawdown(closes),
	}
}

// expectedShortfall averages every return of the whole series at or below
// the row's value-at-risk, then smooths that with a trailing window mean.
func (e *Engine) expectedShortfall(returns, valueAtRisk []float64) []float64 {
	tail := indicators.Undefined(len(returns))
	for i, threshold := range valueAtRisk {
		if !domain.IsDefined(threshold) {
			continue
		}
		var sum float64
		var count int
		for _, r := range returns {
			if domain.IsDefined(r) && r <= threshold {
				sum += r
				count++
			}
		}
		if count > 0 {
			tail[i] = sum / float64(count)
		}
	}
	return indicators.RollingMean(tail, e.cfg.Window)
}

// maxDrawdown is the trailing minimum of the distance below the running peak.
func (e *Engine) maxDrawdown(closes []float64) []float64 {
	underwater := indicators.Undefined(len(closes))
	peak := domain.Undefined()
	for i, c := range closes {
		if !domain.IsDefined(c) {
			continue
		}
		if !domain.IsDefined(peak) || c > peak {
			peak = c
		}
		if peak != 0 {
			underwater[i] = c/peak - 1
		}
	}
	return indicators.RollingMin(underwater, e.cfg.Window)
}
