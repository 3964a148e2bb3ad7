package strategy

import (
	"context"
	"fmt"

	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/ports"
	"cryptoSignalWatch/internal/strategy/indicators"
)

// Config holds parameters for the signal strategy.
type Config struct {
	RSIOversold   float64 // e.g., 30.0
	RSIOverbought float64 // e.g., 70.0
	// RequiredBars is the history length below which a soft warning is logged, e.g., 200
	RequiredBars int
}

// DefaultConfig returns the standard RSI thresholds.
func DefaultConfig() Config {
	return Config{
		RSIOversold:   30,
		RSIOverbought: 70,
		RequiredBars:  indicators.NewEngine(indicators.DefaultConfig()).RequiredDataPoints(),
	}
}

// Strategy implements the buy/sell rules over an analytics frame.
type Strategy struct {
	cfg    Config
	logger ports.Logger
}

// New creates a new Strategy instance.
func New(cfg Config, logger ports.Logger) (*Strategy, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	if cfg.RSIOversold <= 0 || cfg.RSIOverbought >= 100 {
		return nil, fmt.Errorf("rsi thresholds must lie strictly between 0 and 100")
	}
	if cfg.RSIOversold >= cfg.RSIOverbought {
		return nil, fmt.Errorf("rsi oversold threshold must be less than overbought threshold")
	}
	if cfg.RequiredBars <= 0 {
		cfg.RequiredBars = DefaultConfig().RequiredBars
	}
	return &Strategy{cfg: cfg, logger: logger}, nil
}

// RequiredDataPoints returns the number of bars needed for the longest input window.
func (s *Strategy) RequiredDataPoints() int {
	return s.cfg.RequiredBars
}

// Evaluate derives the signal state from the latest row of frame.
func (s *Strategy) Evaluate(ctx context.Context, frame *domain.Frame) domain.SignalState {
	if frame.Len() < s.RequiredDataPoints() {
		s.logger.Warn(ctx, "Not enough bars for every signal input to be defined", map[string]interface{}{
			"available": frame.Len(),
			"required":  s.RequiredDataPoints(),
			"reason":    ports.ErrInsufficientHistory.Error(),
		})
	}

	row := frame.Latest()
	state := s.EvaluateRow(row)

	s.logger.Debug(ctx, "Signal evaluated", map[string]interface{}{
		"close":      row.Get(domain.FieldClose),
		"macd":       row.Get(domain.FieldMACD),
		"signalLine": row.Get(domain.FieldSignalLine),
		"rsi":        row.Get(domain.FieldRSI),
		"sma50":      row.Get(domain.FieldSMA50),
		"sma200":     row.Get(domain.FieldSMA200),
		"buy":        state.Buy,
		"sell":       state.Sell,
	})
	return state
}

// EvaluateRow applies the buy and sell rules to one row. A rule with any
// undefined input evaluates to false.
func (s *Strategy) EvaluateRow(row domain.Row) domain.SignalState {
	in := readInputs(row)
	if !in.defined() {
		return domain.SignalState{}
	}

	buy := in.macd > in.signalLine &&
		indicators.IsOversold(in.rsi, s.cfg.RSIOversold) &&
		in.close > in.sma50 &&
		in.sma50 > in.sma200 &&
		in.close < in.lowerBand

	sell := in.macd < in.signalLine &&
		indicators.IsOverbought(in.rsi, s.cfg.RSIOverbought) &&
		in.close < in.sma50 &&
		in.sma50 < in.sma200 &&
		in.close > in.upperBand

	return domain.SignalState{Buy: buy, Sell: sell}
}

type inputs struct {
	close, macd, signalLine, rsi float64
	sma50, sma200                float64
	upperBand, lowerBand         float64
}

func readInputs(row domain.Row) inputs {
	return inputs{
		close:      row.Get(domain.FieldClose),
		macd:       row.Get(domain.FieldMACD),
		signalLine: row.Get(domain.FieldSignalLine),
		rsi:        row.Get(domain.FieldRSI),
		sma50:      row.Get(domain.FieldSMA50),
		sma200:     row.Get(domain.FieldSMA200),
		upperBand:  row.Get(domain.FieldBollingerUpper),
		lowerBand:  row.Get(domain.FieldBollingerLower),
	}
}

// defined reports whether every input holds a value. Both rules read the same
// inputs, so one undefined value makes both false.
func (in inputs) defined() bool {
	for _, v := range []float64{in.close, in.macd, in.signalLine, in.rsi, in.sma50, in.sma200, in.upperBand, in.lowerBand} {
		if !domain.IsDefined(v) {
			return false
		}
	}
	return true
}
