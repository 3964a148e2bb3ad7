package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Format selects the output encoding of the logger.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// ParseLevel converts a string level to a zerolog level, defaulting to info.
func ParseLevel(levelStr string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(levelStr))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// ParseFormat converts a string to a Format, defaulting to JSON.
func ParseFormat(formatStr string) Format {
	if strings.EqualFold(strings.TrimSpace(formatStr), string(FormatConsole)) {
		return FormatConsole
	}
	return FormatJSON
}

// ZeroLogger implements the ports.Logger interface on top of zerolog.
type ZeroLogger struct {
	logger zerolog.Logger
}

// New creates a logger writing to os.Stderr.
func New(level zerolog.Level, format Format) *ZeroLogger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, level zerolog.Level, format Format) *ZeroLogger {
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return &ZeroLogger{
		logger: zerolog.New(w).With().Timestamp().Logger().Level(level),
	}
}

// Level returns the configured minimum level.
func (l *ZeroLogger) Level() zerolog.Level {
	return l.logger.GetLevel()
}

func (l *ZeroLogger) emit(evt *zerolog.Event, msg string, fields []map[string]interface{}) {
	if len(fields) > 0 && fields[0] != nil {
		evt = evt.Fields(fields[0])
	}
	evt.Msg(msg)
}

// Debug logs a message at Debug level.
func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Debug(), msg, fields)
}

// Info logs a message at Info level.
func (l *ZeroLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Info(), msg, fields)
}

// Warn logs a message at Warning level.
func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Warn(), msg, fields)
}

// Error logs an error message at Error level.
func (l *ZeroLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Error().Err(err), msg, fields)
}
