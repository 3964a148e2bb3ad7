package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"cryptoSignalWatch/config"
	"cryptoSignalWatch/internal/adapters/logger"
	"cryptoSignalWatch/internal/adapters/sqlite"
	"cryptoSignalWatch/internal/app"
	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/ports"
	"cryptoSignalWatch/internal/utils"
)

// One-shot analysis: fetch bars once, print the latest statistics and the
// current signal, optionally export the whole frame.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	symbol := flag.String("symbol", cfg.Symbol, "trading symbol, e.g. BTC/USDT")
	timeframe := flag.String("timeframe", cfg.Timeframe, "bar interval, e.g. 1h")
	exchange := flag.String("exchange", cfg.ExchangeID, "data source id: binance, binanceusdm, csv")
	out := flag.String("out", "", "write the full analytics frame as CSV to this file")
	tail := flag.Int("tail", 10, "number of recent rows to tabulate")
	history := flag.Int("history", 5, "number of journaled signal transitions to list; 0 disables")
	flag.Parse()

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
	defer cancel()

	router, err := app.BuildRouter(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize data sources: %v", err)
	}
	series, err := router.FetchBars(ctx, *symbol, *timeframe, *exchange)
	if err != nil {
		log.Fatalf("Unable to fetch data: %v", err)
	}
	if err := series.Validate(); err != nil {
		log.Fatalf("Invalid bar series: %v", err)
	}

	pipeline := app.BuildPipeline(cfg)
	strat, err := app.BuildStrategy(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize signal strategy: %v", err)
	}

	frame := pipeline.Compute(series)
	if frame.Len() < pipeline.RequiredDataPoints() {
		fmt.Printf("Note: %d bars fetched, %d needed for every statistic to be defined.\n", frame.Len(), pipeline.RequiredDataPoints())
	}

	printTail(frame, *tail)
	fmt.Println()
	for _, line := range app.FormatSnapshot(frame, *symbol) {
		fmt.Println(line)
	}
	state := strat.Evaluate(ctx, frame)
	fmt.Println(app.FormatAction(state, frame.Latest().Get(domain.FieldClose)))

	if *history > 0 && cfg.JournalDBPath != "" {
		printHistory(ctx, cfg.JournalDBPath, *symbol, *history, appLogger)
	}

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("Error creating %s: %v", *out, err)
		}
		defer f.Close()
		if err := utils.WriteFrameToCSV(frame, f); err != nil {
			log.Fatalf("Error writing frame: %v", err)
		}
		fmt.Printf("Frame written to %s\n", *out)
	}
}

// printTail tabulates the signal inputs of the last n rows.
func printTail(frame *domain.Frame, n int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Time\tClose\tRSI\tMACD\tSignal\tSMA50\tSMA200\tVaR95\tMaxDD\t")

	start := frame.Len() - n
	if start < 0 {
		start = 0
	}
	for i := start; i < frame.Len(); i++ {
		row := frame.Row(i)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Timestamp().UTC().Format("2006-01-02 15:04"),
			cell(row.Get(domain.FieldClose)),
			cell(row.Get(domain.FieldRSI)),
			cell(row.Get(domain.FieldMACD)),
			cell(row.Get(domain.FieldSignalLine)),
			cell(row.Get(domain.FieldSMA50)),
			cell(row.Get(domain.FieldSMA200)),
			cell(row.Get(domain.FieldVaR95)),
			cell(row.Get(domain.FieldMaxDrawdown)),
		)
	}
	w.Flush()
}

func cell(v float64) string {
	if !domain.IsDefined(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

// printHistory lists the latest journaled transitions, skipping silently when
// no journal has been written yet.
func printHistory(ctx context.Context, dbPath, symbol string, limit int, appLogger ports.Logger) {
	if _, err := os.Stat(dbPath); err != nil {
		return
	}
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: dbPath, Logger: appLogger})
	if err != nil {
		log.Printf("Signal journal unavailable: %v", err)
		return
	}
	defer repo.Close()

	events, err := repo.FindRecent(ctx, symbol, limit)
	if err != nil {
		log.Printf("Reading signal journal failed: %v", err)
		return
	}
	fmt.Printf("\nRecent signal transitions for %s:\n", symbol)
	if len(events) == 0 {
		fmt.Println("  none")
		return
	}
	for _, evt := range events {
		fmt.Printf("  %s  %-7s close=%s rsi=%s (%s)\n",
			evt.DetectedAt.UTC().Format("2006-01-02 15:04:05"), evt.Action, cell(evt.Close), cell(evt.RSI), evt.Timeframe)
	}
}
