package ports

import (
	"context"

	"cryptoSignalWatch/internal/domain"
)

// SignalJournal stores emitted signal transitions for later inspection.
// It is write-mostly; the polling loop never reads it back to restore state.
type SignalJournal interface {
	// Record saves a transition event.
	Record(ctx context.Context, evt *domain.SignalEvent) error
	// FindRecent returns the most recent events for a symbol, newest first.
	FindRecent(ctx context.Context, symbol string, limit int) ([]*domain.SignalEvent, error)
}
