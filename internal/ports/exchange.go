package ports

import (
	"context"

	"cryptoSignalWatch/internal/domain"
)

// BarSource fetches a complete bar series for a symbol/timeframe/exchange triple.
// Implementations wrap every failure with ErrFetchFailed.
type BarSource interface {
	FetchBars(ctx context.Context, symbol, timeframe, exchangeID string) (*domain.BarSeries, error)
}
