package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/ports"
)

// Router dispatches FetchBars to the source registered for the exchange id.
// Registration happens before the polling loop starts; the router is read-only afterwards.
type Router struct {
	sources map[string]ports.BarSource
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{sources: make(map[string]ports.BarSource)}
}

// Register binds one or more exchange ids to source. Ids are case-insensitive.
func (r *Router) Register(source ports.BarSource, exchangeIDs ...string) {
	for _, id := range exchangeIDs {
		r.sources[strings.ToLower(id)] = source
	}
}

// Supports reports whether a source is registered for exchangeID.
func (r *Router) Supports(exchangeID string) bool {
	_, ok := r.sources[strings.ToLower(exchangeID)]
	return ok
}

// ExchangeIDs returns the registered ids in sorted order.
func (r *Router) ExchangeIDs() []string {
	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FetchBars implements ports.BarSource.
func (r *Router) FetchBars(ctx context.Context, symbol, timeframe, exchangeID string) (*domain.BarSeries, error) {
	source, ok := r.sources[strings.ToLower(exchangeID)]
	if !ok {
		return nil, fmt.Errorf("FetchBars failed: %w: %w: %q (known: %s)",
			ports.ErrFetchFailed, ports.ErrUnknownExchange, exchangeID, strings.Join(r.ExchangeIDs(), ", "))
	}
	return source.FetchBars(ctx, symbol, timeframe, exchangeID)
}
