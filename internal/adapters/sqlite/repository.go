package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.SignalJournal using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/signals.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w: %w", filepath.Dir(dbPath), ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS signal_events (
		id TEXT PRIMARY KEY,
		cycle_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		exchange TEXT NOT NULL,
		prev_buy INTEGER NOT NULL,
		prev_sell INTEGER NOT NULL,
		cur_buy INTEGER NOT NULL,
		cur_sell INTEGER NOT NULL,
		action TEXT NOT NULL,
		close REAL NULL,
		bar_time TIMESTAMP NOT NULL,
		rsi REAL NULL, -- NULL when undefined
		macd REAL NULL,
		signal_line REAL NULL,
		detected_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_signal_events_symbol_detected_at ON signal_events (symbol, detected_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Record saves a signal transition.
func (r *Repository) Record(ctx context.Context, evt *domain.SignalEvent) error {
	const query = `
	INSERT INTO signal_events (id, cycle_id, symbol, timeframe, exchange,
	                           prev_buy, prev_sell, cur_buy, cur_sell, action,
	                           close, bar_time, rsi, macd, signal_line, detected_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		evt.ID, evt.CycleID, evt.Symbol, evt.Timeframe, evt.Exchange,
		evt.Previous.Buy, evt.Previous.Sell, evt.Current.Buy, evt.Current.Sell, string(evt.Action),
		nullFloat(evt.Close), evt.BarTime.UTC(), nullFloat(evt.RSI), nullFloat(evt.MACD), nullFloat(evt.SignalLine),
		evt.DetectedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert signal event %s: %w: %w", evt.ID, ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Signal event recorded", map[string]interface{}{"eventID": evt.ID, "symbol": evt.Symbol, "action": string(evt.Action)})
	return nil
}

// FindRecent retrieves the most recent events for a given symbol, up to a limit.
func (r *Repository) FindRecent(ctx context.Context, symbol string, limit int) ([]*domain.SignalEvent, error) {
	const query = `
	SELECT id, cycle_id, symbol, timeframe, exchange,
	       prev_buy, prev_sell, cur_buy, cur_sell, action,
	       close, bar_time, rsi, macd, signal_line, detected_at
	FROM signal_events
	WHERE symbol = ? ORDER BY detected_at DESC, rowid DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query signal events for symbol %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	events := make([]*domain.SignalEvent, 0)
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal event during FindRecent: %w: %w", ports.ErrQueryFailed, err)
		}
		events = append(events, evt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signal event rows: %w: %w", ports.ErrQueryFailed, err)
	}
	return events, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEvent scans a row into a domain.SignalEvent struct.
func scanEvent(s scanner) (*domain.SignalEvent, error) {
	evt := &domain.SignalEvent{}
	var action string
	var closePrice, rsi, macd, signalLine sql.NullFloat64
	err := s.Scan(
		&evt.ID, &evt.CycleID, &evt.Symbol, &evt.Timeframe, &evt.Exchange,
		&evt.Previous.Buy, &evt.Previous.Sell, &evt.Current.Buy, &evt.Current.Sell, &action,
		&closePrice, &evt.BarTime, &rsi, &macd, &signalLine, &evt.DetectedAt)
	if err != nil {
		return nil, err
	}
	evt.Action = domain.Action(action)
	evt.Close = fromNull(closePrice)
	evt.RSI = fromNull(rsi)
	evt.MACD = fromNull(macd)
	evt.SignalLine = fromNull(signalLine)
	return evt, nil
}

// nullFloat stores undefined statistics as NULL.
func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: domain.IsDefined(v)}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return domain.Undefined()
	}
	return v.Float64
}
