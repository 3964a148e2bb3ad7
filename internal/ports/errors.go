package ports

import (
	"errors"

	"cryptoSignalWatch/internal/domain"
)

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Data Source Errors
	ErrFetchFailed          = errors.New("failed to fetch bar series")
	ErrExchangeUnavailable  = errors.New("exchange API is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrUnknownExchange      = errors.New("unknown exchange id")
	ErrUnsupportedTimeframe = errors.New("unsupported timeframe")
	ErrInvalidSeries        = domain.ErrInvalidSeries

	// Analytics
	// ErrInsufficientHistory is never returned by the engines; short history
	// shows up as undefined values. It is used to label the soft warning.
	ErrInsufficientHistory = errors.New("insufficient history for the longest window")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")

	// Notification Errors
	ErrPublishFailed = errors.New("failed to publish signal event")
)
