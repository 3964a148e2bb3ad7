package csvsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/ports"
	"cryptoSignalWatch/internal/utils"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func setupDir(t *testing.T, n int) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "csvsource_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]*domain.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = &domain.Bar{Timestamp: start.Add(time.Duration(i) * time.Hour), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1}
	}
	require.NoError(t, utils.WriteBarsToCSV(bars, filepath.Join(dir, "BTCUSDT_1h.csv")))
	return dir
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "BTCUSDT_1h.csv", FileName("BTC/USDT", "1h"))
	assert.Equal(t, "ETHUSDT_4h.csv", FileName("eth/usdt:usdt", "4h"))
}

func TestNew(t *testing.T) {
	_, err := New(Config{Dir: "data"})
	assert.Error(t, err)

	_, err = New(Config{Logger: &mockLogger{}})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestFetchBars(t *testing.T) {
	dir := setupDir(t, 10)
	src, err := New(Config{Dir: dir, Limit: 4, Logger: &mockLogger{}})
	require.NoError(t, err)

	series, err := src.FetchBars(context.Background(), "BTC/USDT", "1h", "csv")
	require.NoError(t, err)
	require.Len(t, series.Bars, 4)
	assert.Equal(t, 106.0, series.Bars[0].Close)
	assert.Equal(t, 109.0, series.Last().Close)
	assert.Equal(t, "csv", series.Exchange)
	assert.NoError(t, series.Validate())
}

func TestFetchBars_MissingFile(t *testing.T) {
	dir := setupDir(t, 1)
	src, err := New(Config{Dir: dir, Logger: &mockLogger{}})
	require.NoError(t, err)

	_, err = src.FetchBars(context.Background(), "DOGE/USDT", "1h", "csv")
	assert.ErrorIs(t, err, ports.ErrFetchFailed)
	assert.ErrorIs(t, err, ports.ErrExchangeUnavailable)
}

func TestFetchBars_CanceledContext(t *testing.T) {
	dir := setupDir(t, 1)
	src, err := New(Config{Dir: dir, Logger: &mockLogger{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.FetchBars(ctx, "BTC/USDT", "1h", "csv")
	assert.ErrorIs(t, err, ports.ErrFetchFailed)
	assert.ErrorIs(t, err, context.Canceled)
}
