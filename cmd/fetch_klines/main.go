package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"cryptoSignalWatch/config"
	"cryptoSignalWatch/internal/adapters/binanceclient"
	"cryptoSignalWatch/internal/adapters/csvsource"
	"cryptoSignalWatch/internal/adapters/logger"
	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	symbol := flag.String("symbol", cfg.Symbol, "trading symbol, e.g. BTC/USDT")
	interval := flag.String("timeframe", cfg.Timeframe, "kline interval, e.g. 1h")
	exchange := flag.String("exchange", binanceclient.ExchangeSpot, "binance or binanceusdm")
	months := flag.Int("months", 0, "download this many months of futures history; 0 fetches the latest BARS_LIMIT bars")
	flag.Parse()

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
		Limit:      cfg.BarsLimit,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	var bars []*domain.Bar
	if *months > 0 {
		end := time.Now()
		start := end.AddDate(0, -*months, 0)
		fmt.Printf("Fetching klines for %s %s from %s to %s...\n", *symbol, *interval, start.Format(time.RFC3339), end.Format(time.RFC3339))
		bars, err = binanceClient.GetKlinesRange(ctx, *symbol, *interval, start, end)
	} else {
		market, merr := binanceclient.MarketFor(*exchange)
		if merr != nil {
			log.Fatalf("FATAL: %v", merr)
		}
		fmt.Printf("Fetching latest %d klines for %s %s on %s...\n", cfg.BarsLimit, *symbol, *interval, market)
		bars, err = binanceClient.GetKlines(ctx, market, *symbol, *interval, cfg.BarsLimit)
	}
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching klines")
		log.Fatalf("Error fetching klines: %v", err)
	}
	appLogger.Info(ctx, "Fetched klines", map[string]interface{}{"count": len(bars)})

	filename := filepath.Join(cfg.CSVDataDir, csvsource.FileName(*symbol, *interval))
	if err := utils.WriteBarsToCSV(bars, filename); err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved to", map[string]interface{}{"filename": filename})
}
