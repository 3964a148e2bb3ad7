package utils

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoSignalWatch/internal/domain"
)

func sampleBars() []*domain.Bar {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []*domain.Bar{
		{Timestamp: start, Open: 100.5, High: 101.25, Low: 99.75, Close: 100.9, Volume: 12.345},
		{Timestamp: start.Add(time.Hour), Open: 100.9, High: 102, Low: 100.1, Close: 101.7, Volume: 8},
	}
}

func TestBarsCSVRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "csv_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	filename := filepath.Join(dir, "nested", "BTCUSDT_1h.csv")
	bars := sampleBars()
	require.NoError(t, WriteBarsToCSV(bars, filename))

	got, err := ReadBarsFromCSV(filename)
	require.NoError(t, err)
	assert.Equal(t, bars, got)
}

func TestReadBars_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "time,o,h,l,c,v\n"},
		{"bad timestamp", "timestamp,open,high,low,close,volume\nyesterday,1,1,1,1,1\n"},
		{"bad number", "timestamp,open,high,low,close,volume\n2024-01-01T00:00:00Z,1,x,1,1,1\n"},
		{"short row", "timestamp,open,high,low,close,volume\n2024-01-01T00:00:00Z,1,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBars(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestWriteFrameToCSV(t *testing.T) {
	frame := domain.NewFrame(&domain.BarSeries{Symbol: "BTC/USDT", Bars: sampleBars()})
	require.NoError(t, frame.SetColumn(domain.FieldRSI, []float64{math.NaN(), 61.5}))
	frame.Summary.Sharpe = 1.5

	var buf bytes.Buffer
	require.NoError(t, WriteFrameToCSV(frame, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %s missing", name)
		return -1
	}

	assert.Equal(t, "2024-03-01T13:00:00Z", records[2][col("timestamp")])
	assert.Equal(t, "101.7", records[2][col("close")])
	assert.Equal(t, "", records[1][col("rsi")])
	assert.Equal(t, "61.5", records[2][col("rsi")])
	assert.Equal(t, "", records[2][col("sma_200")])
	assert.Equal(t, "1.5", records[1][col("sharpe")])
	assert.Equal(t, "1.5", records[2][col("sharpe")])
}
