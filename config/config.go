package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"cryptoSignalWatch/internal/adapters/logger"
	"cryptoSignalWatch/internal/ports"
)

// Config holds all application configuration.
type Config struct {
	// Market
	Symbol     string
	Timeframe  string
	ExchangeID string
	BarsLimit  int

	// Polling
	RefreshInterval time.Duration
	RefreshSchedule string // Optional standard cron spec; overrides RefreshInterval
	FetchTimeout    time.Duration

	// Risk and performance
	RiskWindow     int     // e.g., 252
	RiskConfidence float64 // e.g., 0.95
	RiskFreeRate   float64 // annual, e.g., 0.02

	// Strategy Parameters
	StrategyRSIOversold   float64 // e.g., 30.0
	StrategyRSIOverbought float64 // e.g., 70.0

	// Binance API (optional, klines are public)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Storage and sinks
	CSVDataDir    string
	ChartDir      string // Empty disables chart export
	ChartCSV      bool   // Also export chart data as CSV
	JournalDBPath string // Empty disables the journal
	RedisAddr     string // Empty disables publishing
	RedisPassword string
	RedisDB       int
	RedisChannel  string
	MetricsAddr   string // Empty disables the metrics endpoint

	// News
	NewsEnabled bool
	NewsTimeout time.Duration

	// Logging
	LogLevel  zerolog.Level
	LogFormat logger.Format
}

// env resolves keys from the process environment first and the optional
// YAML file second.
type env struct {
	file map[string]string
}

// LoadConfig loads configuration from the environment (.env file included)
// and the YAML file named by CONFIG_FILE, if any.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	e := &env{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		e.file = file
	}
	return e.load()
}

// readFile reads a flat YAML mapping of configuration keys, e.g. "SYMBOL: ETH/USDT".
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s failed: %w: %w", path, ports.ErrConfigurationError, err)
	}
	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s failed: %w: %w", path, ports.ErrConfigurationError, err)
	}
	file := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		file[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return file, nil
}

func (e *env) load() (*Config, error) {
	cfg := &Config{}
	var err error
	var errs []error // Collect validation errors

	// Market
	cfg.Symbol = e.get("SYMBOL", "BTC/USDT")
	if cfg.Symbol == "" {
		errs = append(errs, errors.New("SYMBOL must be set"))
	}
	cfg.Timeframe = e.get("TIMEFRAME", "1h")
	if cfg.Timeframe == "" {
		errs = append(errs, errors.New("TIMEFRAME must be set"))
	}
	cfg.ExchangeID = strings.ToLower(e.get("EXCHANGE_ID", "binance"))
	if cfg.ExchangeID == "" {
		errs = append(errs, errors.New("EXCHANGE_ID must be set"))
	}
	cfg.BarsLimit, err = e.getIntRequired("BARS_LIMIT", 1000)
	if err != nil {
		errs = append(errs, err)
	} else if cfg.BarsLimit <= 0 {
		errs = append(errs, errors.New("BARS_LIMIT must be positive"))
	}

	// Polling
	refreshSeconds, err := e.getIntRequired("REFRESH_INTERVAL_SECONDS", 60)
	if err != nil {
		errs = append(errs, err)
	} else if refreshSeconds <= 0 {
		errs = append(errs, errors.New("REFRESH_INTERVAL_SECONDS must be positive"))
	}
	cfg.RefreshInterval = time.Duration(refreshSeconds) * time.Second

	cfg.RefreshSchedule = e.get("REFRESH_SCHEDULE", "")
	if cfg.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(cfg.RefreshSchedule); err != nil {
			errs = append(errs, fmt.Errorf("invalid REFRESH_SCHEDULE: %w", err))
		}
	}

	fetchSeconds, err := e.getIntRequired("FETCH_TIMEOUT_SECONDS", 30)
	if err != nil {
		errs = append(errs, err)
	} else if fetchSeconds <= 0 {
		errs = append(errs, errors.New("FETCH_TIMEOUT_SECONDS must be positive"))
	}
	cfg.FetchTimeout = time.Duration(fetchSeconds) * time.Second

	// Risk and performance
	cfg.RiskWindow, err = e.getIntRequired("RISK_WINDOW", 252)
	if err != nil {
		errs = append(errs, err)
	} else if cfg.RiskWindow < 2 {
		errs = append(errs, errors.New("RISK_WINDOW must be at least 2"))
	}
	cfg.RiskConfidence, err = e.getFloatRequired("RISK_CONFIDENCE", 0.95)
	if err != nil {
		errs = append(errs, err)
	} else if cfg.RiskConfidence <= 0 || cfg.RiskConfidence >= 1 {
		errs = append(errs, errors.New("RISK_CONFIDENCE must be between 0.0 and 1.0 (exclusive)"))
	}
	cfg.RiskFreeRate, err = e.getFloatRequired("RISK_FREE_RATE", 0.02)
	if err != nil {
		errs = append(errs, err)
	}

	// Strategy Parameters
	cfg.StrategyRSIOversold, err = e.getFloatRequired("STRATEGY_RSI_OVERSOLD", 30.0)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.StrategyRSIOverbought, err = e.getFloatRequired("STRATEGY_RSI_OVERBOUGHT", 70.0)
	if err != nil {
		errs = append(errs, err)
	}
	if cfg.StrategyRSIOverbought <= cfg.StrategyRSIOversold || cfg.StrategyRSIOverbought > 100 || cfg.StrategyRSIOversold < 0 {
		errs = append(errs, errors.New("STRATEGY_RSI_OVERBOUGHT must be greater than STRATEGY_RSI_OVERSOLD, both between 0-100"))
	}

	// Binance API
	cfg.APIKey = e.get("BINANCE_API_KEY", "")
	cfg.SecretKey = e.get("BINANCE_API_SECRET", "")
	cfg.IsTestnet = e.getBool("IS_TESTNET", false)

	// Storage and sinks
	cfg.CSVDataDir = e.get("CSV_DATA_DIR", "./data")
	cfg.ChartDir = e.getOptional("CHART_DIR", "./data/charts")
	cfg.ChartCSV = e.getBool("CHART_EXPORT_CSV", false)
	cfg.JournalDBPath = e.getOptional("JOURNAL_DB_PATH", "./data/signals.db")
	cfg.RedisAddr = e.get("REDIS_ADDR", "")
	cfg.RedisPassword = e.get("REDIS_PASSWORD", "")
	cfg.RedisDB, err = e.getIntRequired("REDIS_DB", 0)
	if err != nil {
		errs = append(errs, err)
	} else if cfg.RedisDB < 0 {
		errs = append(errs, errors.New("REDIS_DB cannot be negative"))
	}
	cfg.RedisChannel = e.get("REDIS_CHANNEL", "signals")
	cfg.MetricsAddr = e.get("METRICS_ADDR", "")

	// News
	cfg.NewsEnabled = e.getBool("NEWS_ENABLED", true)
	newsSeconds, err := e.getIntRequired("NEWS_TIMEOUT_SECONDS", 10)
	if err != nil {
		errs = append(errs, err)
	} else if newsSeconds <= 0 {
		errs = append(errs, errors.New("NEWS_TIMEOUT_SECONDS must be positive"))
	}
	cfg.NewsTimeout = time.Duration(newsSeconds) * time.Second

	// Logging
	cfg.LogLevel = logger.ParseLevel(e.get("LOG_LEVEL", "INFO"))
	cfg.LogFormat = logger.ParseFormat(e.get("LOG_FORMAT", "json"))

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %w: %w", ports.ErrConfigurationError, errors.Join(errs...))
	}

	return cfg, nil
}

// Schedule returns the refresh schedule: the cron spec when set, otherwise a
// fixed interval.
func (c *Config) Schedule() (cron.Schedule, error) {
	if c.RefreshSchedule == "" {
		return cron.Every(c.RefreshInterval), nil
	}
	sched, err := cron.ParseStandard(c.RefreshSchedule)
	if err != nil {
		return nil, fmt.Errorf("parse REFRESH_SCHEDULE failed: %w: %w", ports.ErrConfigurationError, err)
	}
	return sched, nil
}

// --- Env Var Helpers ---

func (e *env) lookup(key string) (string, bool) {
	if value, ok := os.LookupEnv(key); ok {
		return value, true
	}
	value, ok := e.file[key]
	return value, ok
}

func (e *env) get(key, defaultValue string) string {
	value, _ := e.lookup(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getOptional is like get, but an explicitly empty value disables the feature.
func (e *env) getOptional(key, defaultValue string) string {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	return value
}

func (e *env) getIntRequired(key string, defaultValue int) (int, error) {
	valueStr := e.get(key, "")
	if valueStr == "" {
		// Use default if the key is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func (e *env) getFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := e.get(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func (e *env) getBool(key string, defaultValue bool) bool {
	valueStr := e.get(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
