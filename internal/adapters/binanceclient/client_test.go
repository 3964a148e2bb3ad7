package binanceclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoSignalWatch/internal/ports"
)

type mockLogger struct {
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

const klinesBody = `[
	[1704067200000,"42000.10","42100.00","41900.50","42050.25","12.5",1704070799999,"525000.0",100,"6.0","252000.0","0"],
	[1704070800000,"42050.25","42200.00","42000.00","42150.75","8.25",1704074399999,"347000.0",80,"4.0","168000.0","0"]
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *mockLogger) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := &mockLogger{}
	client, err := New(Config{
		Logger:         logger,
		Limit:          300,
		SpotBaseURL:    srv.URL,
		FuturesBaseURL: srv.URL,
	})
	require.NoError(t, err)
	return client, logger
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	client, err := New(Config{Logger: &mockLogger{}, UseTestnet: true})
	require.NoError(t, err)
	assert.Equal(t, spotURLTestnet, client.spotClient.BaseURL)
	assert.Equal(t, futuresURLTestnet, client.futuresClient.BaseURL)
	assert.Equal(t, defaultLimit, client.limit)
}

func TestFetchBars_Spot(t *testing.T) {
	var gotPath, gotSymbol, gotInterval, gotLimit string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSymbol = r.URL.Query().Get("symbol")
		gotInterval = r.URL.Query().Get("interval")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(klinesBody))
	})

	series, err := client.FetchBars(context.Background(), "BTC/USDT", "1h", "binance")
	require.NoError(t, err)

	assert.Equal(t, "/api/v3/klines", gotPath)
	assert.Equal(t, "BTCUSDT", gotSymbol)
	assert.Equal(t, "1h", gotInterval)
	assert.Equal(t, "300", gotLimit)

	assert.Equal(t, "BTC/USDT", series.Symbol)
	assert.Equal(t, "binance", series.Exchange)
	require.Len(t, series.Bars, 2)
	first := series.Bars[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 42000.10, first.Open)
	assert.Equal(t, 42100.00, first.High)
	assert.Equal(t, 41900.50, first.Low)
	assert.Equal(t, 42050.25, first.Close)
	assert.Equal(t, 12.5, first.Volume)
	assert.NoError(t, series.Validate())
}

func TestFetchBars_Futures(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(klinesBody))
	})

	for _, id := range []string{"binanceusdm", "binance-futures"} {
		series, err := client.FetchBars(context.Background(), "ETH/USDT:USDT", "4h", id)
		require.NoError(t, err)
		assert.Equal(t, "/fapi/v1/klines", gotPath)
		assert.Len(t, series.Bars, 2)
	}
}

func TestFetchBars_Errors(t *testing.T) {
	client, logger := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"code":-1003,"msg":"Too many requests."}`))
	})
	ctx := context.Background()

	_, err := client.FetchBars(ctx, "BTC/USDT", "1h", "kraken")
	assert.ErrorIs(t, err, ports.ErrFetchFailed)
	assert.ErrorIs(t, err, ports.ErrUnknownExchange)

	_, err = client.FetchBars(ctx, "BTC/USDT", "7m", "binance")
	assert.ErrorIs(t, err, ports.ErrFetchFailed)
	assert.ErrorIs(t, err, ports.ErrUnsupportedTimeframe)

	_, err = client.FetchBars(ctx, "BTC/USDT", "1h", "binance")
	assert.ErrorIs(t, err, ports.ErrFetchFailed)
	assert.ErrorIs(t, err, ports.ErrRateLimited)
	assert.NotEmpty(t, logger.errorMsgs)
}

func TestFetchBars_MalformedKline(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[1704067200000,"abc","1","1","1","1",1704070799999,"0",1,"0","0","0"]]`))
	})

	_, err := client.FetchBars(context.Background(), "BTC/USDT", "1h", "binance")
	assert.ErrorIs(t, err, ports.ErrFetchFailed)
}

func TestHandleError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"timeout", context.DeadlineExceeded, ports.ErrTimeout},
		{"canceled", context.Canceled, ports.ErrContextCanceled},
		{"connection", errors.New("dial tcp: connection refused"), ports.ErrConnectionFailed},
		{"invalid symbol", &common.APIError{Code: -1121, Message: "Invalid symbol."}, ports.ErrInvalidRequest},
		{"invalid interval", &common.APIError{Code: -1120, Message: "Invalid interval."}, ports.ErrUnsupportedTimeframe},
		{"other", errors.New("boom"), ports.ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.handleError(ctx, tt.err, "GetKlines")
			assert.ErrorIs(t, err, ports.ErrFetchFailed)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.NoError(t, client.handleError(ctx, nil, "GetKlines"))
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", NormalizeSymbol("BTC/USDT"))
	assert.Equal(t, "BTCUSDT", NormalizeSymbol("btc/usdt:usdt"))
	assert.Equal(t, "ETHBTC", NormalizeSymbol("ETH-BTC"))
	assert.Equal(t, "SOLUSDT", NormalizeSymbol("SOLUSDT"))
}

func TestValidateTimeframe(t *testing.T) {
	assert.NoError(t, ValidateTimeframe("1h"))
	assert.NoError(t, ValidateTimeframe("1M"))
	assert.ErrorIs(t, ValidateTimeframe("1y"), ports.ErrUnsupportedTimeframe)
}

func TestMarketFor(t *testing.T) {
	m, err := MarketFor("BINANCE")
	require.NoError(t, err)
	assert.Equal(t, MarketSpot, m)

	m, err = MarketFor("binanceusdm")
	require.NoError(t, err)
	assert.Equal(t, MarketFutures, m)

	_, err = MarketFor("mexc")
	assert.ErrorIs(t, err, ports.ErrUnknownExchange)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, defaultLimit, clamp(0, maxSpotLimit))
	assert.Equal(t, maxSpotLimit, clamp(5000, maxSpotLimit))
	assert.Equal(t, 200, clamp(200, maxFuturesLimit))
}
