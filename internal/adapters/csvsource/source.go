package csvsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/ports"
	"cryptoSignalWatch/internal/utils"
)

// ExchangeID is the data source id served by this adapter.
const ExchangeID = "csv"

// Source replays bar files from a directory. Each fetch re-reads the file,
// so an external writer can append new bars between cycles.
type Source struct {
	dir    string
	limit  int
	logger ports.Logger
}

// Config holds configuration for the CSV source.
type Config struct {
	Dir    string
	Limit  int // Keep only the most recent bars; 0 keeps all
	Logger ports.Logger
}

// New creates a CSV bar source.
func New(cfg Config) (*Source, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for CSV source")
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: CSV data directory is required", ports.ErrConfigurationError)
	}
	return &Source{dir: cfg.Dir, limit: cfg.Limit, logger: cfg.Logger}, nil
}

// FileName returns the file holding symbol/timeframe bars, e.g. "BTCUSDT_1h.csv".
func FileName(symbol, timeframe string) string {
	s := strings.ToUpper(symbol)
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.NewReplacer("/", "", "-", "").Replace(s)
	return fmt.Sprintf("%s_%s.csv", s, timeframe)
}

// Path returns the full path of the file for symbol/timeframe.
func (s *Source) Path(symbol, timeframe string) string {
	return filepath.Join(s.dir, FileName(symbol, timeframe))
}

// FetchBars reads the bar file for symbol/timeframe.
func (s *Source) FetchBars(ctx context.Context, symbol, timeframe, exchangeID string) (*domain.BarSeries, error) {
	op := "FetchBars"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s operation canceled: %w: %w: %w", op, ports.ErrFetchFailed, ports.ErrContextCanceled, err)
	}

	path := s.Path(symbol, timeframe)
	bars, err := utils.ReadBarsFromCSV(path)
	if err != nil {
		sentinel := ports.ErrInvalidRequest
		if errors.Is(err, fs.ErrNotExist) {
			sentinel = ports.ErrExchangeUnavailable
		}
		s.logger.Error(ctx, err, "Failed to read bar file", map[string]interface{}{"path": path})
		return nil, fmt.Errorf("%s failed: %w: %w: %w", op, ports.ErrFetchFailed, sentinel, err)
	}
	if s.limit > 0 && len(bars) > s.limit {
		bars = bars[len(bars)-s.limit:]
	}

	return &domain.BarSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Exchange:  exchangeID,
		Bars:      bars,
	}, nil
}
