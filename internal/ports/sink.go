package ports

import (
	"context"

	"cryptoSignalWatch/internal/domain"
)

// Display is a line-oriented console sink.
type Display interface {
	DisplayLine(text string)
}

// ChartRenderer produces a visual side effect from a computed frame.
// Render is fire-and-forget: failures are handled by the renderer itself.
type ChartRenderer interface {
	Render(ctx context.Context, frame *domain.Frame)
}

// Notifier delivers a signal transition to an external channel.
type Notifier interface {
	Notify(ctx context.Context, evt *domain.SignalEvent) error
}
