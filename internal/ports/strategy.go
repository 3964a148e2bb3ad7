package ports

import (
	"context"

	"cryptoSignalWatch/internal/domain"
)

// Strategy reduces an analytics frame to a signal state.
type Strategy interface {
	// RequiredDataPoints returns the number of bars needed for every input to be defined.
	RequiredDataPoints() int

	// Evaluate derives the signal state from the latest row of the frame.
	Evaluate(ctx context.Context, frame *domain.Frame) domain.SignalState
}

// Analyzer builds the analytics frame for a bar series.
type Analyzer interface {
	Compute(series *domain.BarSeries) *domain.Frame
}
