package indicators

import (
	"math"

	"cryptoSignalWatch/internal/domain"
)

// Columns maps statistic fields to per-index values.
type Columns map[domain.Field][]float64

// Config holds the window sizes of the technical indicators.
type Config struct {
	EMAShortSpan     int     // e.g., 12
	EMALongSpan      int     // e.g., 26
	SignalSpan       int     // e.g., 9
	RSIPeriod        int     // e.g., 14
	SMAFastPeriod    int     // e.g., 50
	SMASlowPeriod    int     // e.g., 200
	BollingerPeriod  int     // e.g., 20
	BollingerWidth   float64 // band width in standard deviations, e.g., 2
	VolatilityPeriod int     // e.g., 20
	TradingDays      float64 // annualisation factor, e.g., 252
	TenkanPeriod     int     // e.g., 9
	KijunPeriod      int     // e.g., 26
	SenkouBPeriod    int     // e.g., 52
	Displacement     int     // e.g., 26
}

// DefaultConfig returns the standard indicator windows.
func DefaultConfig() Config {
	return Config{
		EMAShortSpan:     12,
		EMALongSpan:      26,
		SignalSpan:       9,
		RSIPeriod:        14,
		SMAFastPeriod:    50,
		SMASlowPeriod:    200,
		BollingerPeriod:  20,
		BollingerWidth:   2,
		VolatilityPeriod: 20,
		TradingDays:      252,
		TenkanPeriod:     9,
		KijunPeriod:      26,
		SenkouBPeriod:    52,
		Displacement:     26,
	}
}

// Engine derives the technical-analysis columns of a bar series.
// It is stateless and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an indicator engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// RequiredDataPoints returns the history length needed for every indicator
// window to be filled at the latest index.
func (e *Engine) RequiredDataPoints() int {
	longest := e.cfg.SMASlowPeriod
	for _, p := range []int{e.cfg.SMAFastPeriod, e.cfg.BollingerPeriod, e.cfg.VolatilityPeriod + 1, e.cfg.RSIPeriod} {
		if p > longest {
			longest = p
		}
	}
	if p := e.cfg.SenkouBPeriod + e.cfg.Displacement; p > longest {
		longest = p
	}
	return longest
}

// Compute derives every indicator column from the series.
func (e *Engine) Compute(series *domain.BarSeries) Columns {
	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	cols := make(Columns)

	emaShort := EMA(closes, e.cfg.EMAShortSpan)
	emaLong := EMA(closes, e.cfg.EMALongSpan)
	macd := combine(emaShort, emaLong, func(a, b float64) float64 { return a - b })
	cols[domain.FieldEMAShort] = emaShort
	cols[domain.FieldEMALong] = emaLong
	cols[domain.FieldMACD] = macd
	cols[domain.FieldSignalLine] = EMA(macd, e.cfg.SignalSpan)

	cols[domain.FieldRSI] = RSI(closes, e.cfg.RSIPeriod)

	cols[domain.FieldSMA50] = SMA(closes, e.cfg.SMAFastPeriod)
	cols[domain.FieldSMA200] = SMA(closes, e.cfg.SMASlowPeriod)

	mid, std, upper, lower := e.bollinger(closes)
	cols[domain.FieldBollingerMid] = mid
	cols[domain.FieldBollingerStd] = std
	cols[domain.FieldBollingerUpper] = upper
	cols[domain.FieldBollingerLower] = lower

	annualise := math.Sqrt(e.cfg.TradingDays)
	cols[domain.FieldHistoricalVolatility] = scale(RollingStd(PctChange(closes), e.cfg.VolatilityPeriod), annualise)

	tenkan := midpoint(highs, lows, e.cfg.TenkanPeriod)
	kijun := midpoint(highs, lows, e.cfg.KijunPeriod)
	cols[domain.FieldTenkan] = tenkan
	cols[domain.FieldKijun] = kijun
	cols[domain.FieldSenkouA] = ShiftForward(combine(tenkan, kijun, func(a, b float64) float64 { return (a + b) / 2 }), e.cfg.Displacement)
	cols[domain.FieldSenkouB] = ShiftForward(midpoint(highs, lows, e.cfg.SenkouBPeriod), e.cfg.Displacement)
	cols[domain.FieldChikou] = ShiftBackward(closes, e.cfg.Displacement)

	return cols
}

func (e *Engine) bollinger(closes []float64) (mid, std, upper, lower []float64) {
	mid = SMA(closes, e.cfg.BollingerPeriod)
	std = RollingStd(closes, e.cfg.BollingerPeriod)
	width := e.cfg.BollingerWidth
	upper = combine(mid, std, func(m, s float64) float64 { return m + width*s })
	lower = combine(mid, std, func(m, s float64) float64 { return m - width*s })
	return mid, std, upper, lower
}

// midpoint is the average of the rolling high maximum and rolling low minimum.
func midpoint(highs, lows []float64, period int) []float64 {
	return combine(RollingMax(highs, period), RollingMin(lows, period), func(h, l float64) float64 { return (h + l) / 2 })
}

// combine applies fn element-wise; an undefined operand yields undefined.
func combine(a, b []float64, fn func(x, y float64) float64) []float64 {
	out := Undefined(len(a))
	for i := range a {
		if i >= len(b) || !domain.IsDefined(a[i]) || !domain.IsDefined(b[i]) {
			continue
		}
		out[i] = fn(a[i], b[i])
	}
	return out
}

func scale(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}
