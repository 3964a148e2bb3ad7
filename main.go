package main

import (
	"context"
	"flag"
	"fmt"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"

	"cryptoSignalWatch/config"
	"cryptoSignalWatch/internal/adapters/chart"
	"cryptoSignalWatch/internal/adapters/console"
	"cryptoSignalWatch/internal/adapters/logger"
	"cryptoSignalWatch/internal/adapters/redisnotifier"
	"cryptoSignalWatch/internal/adapters/sqlite"
	"cryptoSignalWatch/internal/app"
	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/metrics"
	"cryptoSignalWatch/internal/news"
	"cryptoSignalWatch/internal/ports"
)

func main() {
	symbol := flag.String("symbol", "", "trading symbol, e.g. BTC/USDT (overrides SYMBOL)")
	timeframe := flag.String("timeframe", "", "bar interval, e.g. 1h (overrides TIMEFRAME)")
	exchange := flag.String("exchange", "", "data source id: binance, binanceusdm, csv (overrides EXCHANGE_ID)")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}
	if *symbol != "" {
		cfg.Symbol = *symbol
	}
	if *timeframe != "" {
		cfg.Timeframe = *timeframe
	}
	if *exchange != "" {
		cfg.ExchangeID = *exchange
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	if cfg.MetricsAddr != "" {
		srv := metrics.Serve(cfg.MetricsAddr)
		defer srv.Close()
		appLogger.Info(ctx, "Metrics endpoint started", map[string]interface{}{"addr": cfg.MetricsAddr})
	}

	// 3. Initialize Data Sources
	router, err := app.BuildRouter(cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize data sources")
		log.Fatalf("FATAL: Failed to initialize data sources: %v", err)
	}
	if !router.Supports(cfg.ExchangeID) {
		log.Fatalf("FATAL: Unknown exchange %q, supported: %v", cfg.ExchangeID, router.ExchangeIDs())
	}

	display := console.New(nil)

	// 4. Headlines are shown once before polling starts
	if cfg.NewsEnabled {
		showNews(ctx, cfg, appLogger, display)
	}

	// 5. Initialize Analytics and Strategy
	pipeline := app.BuildPipeline(cfg)
	strat, err := app.BuildStrategy(cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize signal strategy")
		log.Fatalf("FATAL: Failed to initialize signal strategy: %v", err)
	}

	// 6. Initialize optional sinks
	var renderer ports.ChartRenderer
	if cfg.ChartDir != "" {
		r, err := chart.NewRenderer(chart.Config{Dir: cfg.ChartDir, Logger: appLogger, ExportCSV: cfg.ChartCSV})
		if err != nil {
			appLogger.Error(ctx, err, "Chart export disabled")
		} else {
			renderer = r
		}
	}

	var journal ports.SignalJournal
	if cfg.JournalDBPath != "" {
		repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.JournalDBPath, Logger: appLogger})
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize signal journal")
			log.Fatalf("FATAL: Failed to initialize signal journal: %v", err)
		}
		defer func() {
			if err := repo.Close(); err != nil {
				appLogger.Error(ctx, err, "Error closing signal journal")
			}
		}()
		journal = repo
	}

	var notifiers []ports.Notifier
	if cfg.RedisAddr != "" {
		pub, err := redisnotifier.New(redisnotifier.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
			Logger:   appLogger,
		})
		if err != nil {
			appLogger.Error(ctx, err, "Redis publishing disabled")
		} else {
			defer pub.Close()
			notifiers = append(notifiers, pub)
		}
	}

	// 7. Initialize Application Service
	schedule, err := cfg.Schedule()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	service, err := app.NewSignalService(
		app.Config{
			Symbol:          cfg.Symbol,
			Timeframe:       cfg.Timeframe,
			Exchange:        cfg.ExchangeID,
			RefreshInterval: cfg.RefreshInterval,
			Schedule:        schedule,
			FetchTimeout:    cfg.FetchTimeout,
		},
		appLogger,
		router,
		pipeline,
		strat,
		display,
		renderer,
		journal,
		notifiers...,
	)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize signal service")
		log.Fatalf("FATAL: Failed to initialize signal service: %v", err)
	}

	// 8. Start the Service
	if err := service.Start(ctx); err != nil {
		appLogger.Error(ctx, err, "Signal service exited with error")
		log.Fatalf("FATAL: Signal service exited with error: %v", err)
	}

	appLogger.Info(ctx, "Application finished gracefully.")
}

func showNews(ctx context.Context, cfg *config.Config, appLogger ports.Logger, display ports.Display) {
	appLogger.Info(ctx, "Fetching latest crypto news...")
	newsCtx, cancel := context.WithTimeout(ctx, cfg.NewsTimeout)
	defer cancel()

	fetcher := news.NewFetcher(&http.Client{Timeout: cfg.NewsTimeout}, appLogger)
	headlines := fetcher.FetchHeadlines(newsCtx, news.AllSources...)

	display.DisplayLine("")
	display.DisplayLine("Latest Headlines:")
	for i, h := range headlines {
		display.DisplayLine(fmt.Sprintf("%d. %s", i+1, h))
	}
	score := news.Aggregate(headlines)
	if domain.IsDefined(score) {
		display.DisplayLine(fmt.Sprintf("Overall sentiment score: %.2f (-1 to 1, negative to positive)", score))
	} else {
		display.DisplayLine("Overall sentiment score: n/a (no headlines)")
	}
}
