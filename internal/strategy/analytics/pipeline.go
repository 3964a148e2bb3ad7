package analytics

import (
	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/risk"
	"cryptoSignalWatch/internal/strategy/indicators"
)

// Pipeline turns a bar series into an analytics frame: technical columns,
// then risk columns, then the performance summary.
type Pipeline struct {
	indicators   *indicators.Engine
	risk         *risk.Engine
	riskFreeRate float64
}

// NewPipeline creates a frame pipeline.
func NewPipeline(ind *indicators.Engine, rsk *risk.Engine, riskFreeRate float64) *Pipeline {
	return &Pipeline{
		indicators:   ind,
		risk:         rsk,
		riskFreeRate: riskFreeRate,
	}
}

// NewDefaultPipeline creates a pipeline with the standard windows and rates.
func NewDefaultPipeline() *Pipeline {
	return NewPipeline(
		indicators.NewEngine(indicators.DefaultConfig()),
		risk.NewEngine(risk.DefaultConfig()),
		DefaultRiskFreeRate,
	)
}

// RequiredDataPoints returns the history needed for every column to be defined
// at the latest row.
func (p *Pipeline) RequiredDataPoints() int {
	n := p.indicators.RequiredDataPoints()
	// var needs window+1 closes; es needs a further window of var values
	if r := 2 * p.risk.Window(); r > n {
		n = r
	}
	return n
}

// Compute builds the analytics frame for series. It never fails on short
// history; columns whose windows are not filled hold undefined values.
func (p *Pipeline) Compute(series *domain.BarSeries) *domain.Frame {
	closes := series.Closes()
	// both engines emit exactly one value per bar
	frame := domain.NewFrameWithColumns(series, p.indicators.Compute(series), p.risk.Compute(closes))
	frame.Summary = ComputePerformance(closes, frame.Column(domain.FieldMaxDrawdown), p.riskFreeRate)
	return frame
}
