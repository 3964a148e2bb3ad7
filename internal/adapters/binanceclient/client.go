package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/ports"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
)

const (
	// Base URLs
	spotURLProduction    = "https://api.binance.com"
	spotURLTestnet       = "https://testnet.binance.vision"
	futuresURLProduction = "https://fapi.binance.com"
	futuresURLTestnet    = "https://testnet.binancefuture.com"

	maxSpotLimit    = 1000
	maxFuturesLimit = 1500
	defaultLimit    = 500
)

// Exchange ids served by this adapter.
const (
	ExchangeSpot         = "binance"
	ExchangeFutures      = "binanceusdm"
	ExchangeFuturesAlias = "binance-futures"
)

// Market selects the Binance API family.
type Market string

const (
	MarketSpot    Market = "spot"
	MarketFutures Market = "futures"
)

// supportedIntervals lists the kline intervals accepted by both markets.
var supportedIntervals = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

// Client implements ports.BarSource for Binance spot and USDⓈ-M futures.
type Client struct {
	spotClient    *binance.Client
	futuresClient *futures.Client
	logger        ports.Logger
	limit         int
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
	Limit      int // Bars per fetch (e.g., 500)

	// Overrides for the REST endpoints; empty uses production or testnet.
	SpotBaseURL    string
	FuturesBaseURL string
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		// Klines are a public endpoint.
		cfg.Logger.Debug(context.Background(), "APIKey or SecretKey is empty. Client will only use public endpoints.")
	}

	spotClient := binance.NewClient(cfg.APIKey, cfg.SecretKey)
	futuresClient := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	// Set BaseURL directly instead of using the global UseTestnet flags
	if cfg.UseTestnet {
		spotClient.BaseURL = spotURLTestnet
		futuresClient.BaseURL = futuresURLTestnet
	} else {
		spotClient.BaseURL = spotURLProduction
		futuresClient.BaseURL = futuresURLProduction
	}
	if cfg.SpotBaseURL != "" {
		spotClient.BaseURL = cfg.SpotBaseURL
	}
	if cfg.FuturesBaseURL != "" {
		futuresClient.BaseURL = cfg.FuturesBaseURL
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{
		"spotBaseURL":    spotClient.BaseURL,
		"futuresBaseURL": futuresClient.BaseURL,
		"testnet":        cfg.UseTestnet,
	})

	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	return &Client{
		spotClient:    spotClient,
		futuresClient: futuresClient,
		logger:        cfg.Logger,
		limit:         limit,
	}, nil
}

// MarketFor maps an exchange id to the Binance market it addresses.
func MarketFor(exchangeID string) (Market, error) {
	switch strings.ToLower(exchangeID) {
	case ExchangeSpot:
		return MarketSpot, nil
	case ExchangeFutures, ExchangeFuturesAlias:
		return MarketFutures, nil
	}
	return "", fmt.Errorf("%w: %q", ports.ErrUnknownExchange, exchangeID)
}

// NormalizeSymbol converts "BTC/USDT" or "BTC/USDT:USDT" into Binance's "BTCUSDT".
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "/", "")
	return strings.ReplaceAll(s, "-", "")
}

// ValidateTimeframe checks that timeframe is a Binance kline interval.
func ValidateTimeframe(timeframe string) error {
	if !supportedIntervals[timeframe] {
		return fmt.Errorf("%w: %q", ports.ErrUnsupportedTimeframe, timeframe)
	}
	return nil
}

// handleError translates common Binance API errors into standardized ports errors.
// Every returned error also matches ports.ErrFetchFailed.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		// Map specific Binance error codes to custom errors
		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1007, -1021: // Backend timeout, or timestamp outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1120: // Invalid interval
			mappedErr = ports.ErrUnsupportedTimeframe
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1121, -1125, -1127, -1128, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		case -1000, -1001, -1016: // Unknown error, disconnected, service shutting down
			mappedErr = ports.ErrExchangeUnavailable
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w: %w", operation, ports.ErrFetchFailed, mappedErr, err)
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w: %w", operation, ports.ErrFetchFailed, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w: %w", operation, ports.ErrFetchFailed, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "no such host") {
		finalErr = fmt.Errorf("%s failed: %w: %w: %w", operation, ports.ErrFetchFailed, ports.ErrConnectionFailed, err)
	} else {
		// Default for other errors (e.g., parsing errors within the adapter)
		finalErr = fmt.Errorf("%s failed: %w: %w: %w", operation, ports.ErrFetchFailed, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// FetchBars retrieves the latest bars for symbol on the market addressed by exchangeID.
func (c *Client) FetchBars(ctx context.Context, symbol, timeframe, exchangeID string) (*domain.BarSeries, error) {
	op := "FetchBars"
	market, err := MarketFor(exchangeID)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w: %w", op, ports.ErrFetchFailed, err)
	}
	if err := ValidateTimeframe(timeframe); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %w", op, ports.ErrFetchFailed, err)
	}

	bars, err := c.GetKlines(ctx, market, symbol, timeframe, c.limit)
	if err != nil {
		return nil, err
	}

	c.logger.Debug(ctx, "Fetched bars", map[string]interface{}{
		"symbol":    symbol,
		"timeframe": timeframe,
		"exchange":  exchangeID,
		"count":     len(bars),
	})
	return &domain.BarSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Exchange:  exchangeID,
		Bars:      bars,
	}, nil
}

// GetKlines retrieves the most recent limit klines for the given symbol.
func (c *Client) GetKlines(ctx context.Context, market Market, symbol, interval string, limit int) ([]*domain.Bar, error) {
	op := "GetKlines"
	pair := NormalizeSymbol(symbol)

	switch market {
	case MarketSpot:
		klines, err := c.spotClient.NewKlinesService().Symbol(pair).Interval(interval).Limit(clamp(limit, maxSpotLimit)).Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		bars := make([]*domain.Bar, 0, len(klines))
		for _, k := range klines {
			if k == nil {
				return nil, c.handleError(ctx, errors.New("received nil historical kline"), op)
			}
			bar, err := translateKline(k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume)
			if err != nil {
				return nil, c.handleError(ctx, fmt.Errorf("failed to translate historical kline: %w", err), op)
			}
			bars = append(bars, bar)
		}
		return bars, nil

	case MarketFutures:
		klines, err := c.futuresClient.NewKlinesService().Symbol(pair).Interval(interval).Limit(clamp(limit, maxFuturesLimit)).Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		return translateFuturesKlines(klines)
	}
	return nil, fmt.Errorf("%s failed: %w: unknown market %q", op, ports.ErrInvalidRequest, market)
}

// GetKlinesRange fetches all futures klines for a symbol/interval between start and end time.
func (c *Client) GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error) {
	op := "GetKlinesRange"
	pair := NormalizeSymbol(symbol)
	var allBars []*domain.Bar
	from := start

	for {
		klines, err := c.futuresClient.NewKlinesService().
			Symbol(pair).
			Interval(interval).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(maxFuturesLimit).
			Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(klines) == 0 {
			break
		}
		bars, err := translateFuturesKlines(klines)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		allBars = append(allBars, bars...)

		last := klines[len(klines)-1]
		from = time.UnixMilli(last.CloseTime + 1)
		if from.After(end) || len(klines) < maxFuturesLimit {
			break
		}
	}

	return allBars, nil
}

func translateFuturesKlines(klines []*futures.Kline) ([]*domain.Bar, error) {
	bars := make([]*domain.Bar, 0, len(klines))
	for _, k := range klines {
		if k == nil {
			return nil, errors.New("received nil historical kline")
		}
		bar, err := translateKline(k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume)
		if err != nil {
			return nil, fmt.Errorf("failed to translate historical kline: %w", err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// translateKline parses Binance's decimal strings into a bar keyed by open time.
func translateKline(openTime int64, open, high, low, cls, volume string) (*domain.Bar, error) {
	values := make([]float64, 5)
	for i, field := range []struct{ name, raw string }{
		{"open price", open},
		{"high price", high},
		{"low price", low},
		{"close price", cls},
		{"volume", volume},
	} {
		d, err := decimal.NewFromString(field.raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s '%s': %w", field.name, field.raw, err)
		}
		values[i] = d.InexactFloat64()
	}

	return &domain.Bar{
		Timestamp: time.UnixMilli(openTime).UTC(),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

func clamp(limit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
