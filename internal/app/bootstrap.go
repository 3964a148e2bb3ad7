package app

import (
	"fmt"

	"cryptoSignalWatch/config"
	"cryptoSignalWatch/internal/adapters/binanceclient"
	"cryptoSignalWatch/internal/adapters/csvsource"
	"cryptoSignalWatch/internal/adapters/datasource"
	"cryptoSignalWatch/internal/ports"
	"cryptoSignalWatch/internal/risk"
	"cryptoSignalWatch/internal/strategy"
	"cryptoSignalWatch/internal/strategy/analytics"
	"cryptoSignalWatch/internal/strategy/indicators"
)

// BuildRouter registers every supported bar source under its exchange ids.
func BuildRouter(cfg *config.Config, logger ports.Logger) (*datasource.Router, error) {
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     logger,
		Limit:      cfg.BarsLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Binance client: %w", err)
	}

	csvSource, err := csvsource.New(csvsource.Config{
		Dir:    cfg.CSVDataDir,
		Limit:  cfg.BarsLimit,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize CSV source: %w", err)
	}

	router := datasource.NewRouter()
	router.Register(binanceClient, binanceclient.ExchangeSpot, binanceclient.ExchangeFutures, binanceclient.ExchangeFuturesAlias)
	router.Register(csvSource, csvsource.ExchangeID)
	return router, nil
}

// BuildPipeline creates the analytics pipeline with the configured risk parameters.
func BuildPipeline(cfg *config.Config) *analytics.Pipeline {
	return analytics.NewPipeline(
		indicators.NewEngine(indicators.DefaultConfig()),
		risk.NewEngine(risk.Config{Window: cfg.RiskWindow, Confidence: cfg.RiskConfidence}),
		cfg.RiskFreeRate,
	)
}

// BuildStrategy creates the signal strategy with the configured RSI thresholds.
func BuildStrategy(cfg *config.Config, logger ports.Logger) (*strategy.Strategy, error) {
	def := strategy.DefaultConfig()
	return strategy.New(strategy.Config{
		RSIOversold:   cfg.StrategyRSIOversold,
		RSIOverbought: cfg.StrategyRSIOverbought,
		RequiredBars:  def.RequiredBars,
	}, logger)
}
