package chart

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"cryptoSignalWatch/internal/domain"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

type mockLogger struct {
	infoMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

func testFrame() *domain.Frame {
	start := time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC)
	return domain.NewFrame(&domain.BarSeries{
		Symbol:    "BTC/USDT",
		Timeframe: "1h",
		Bars: []*domain.Bar{
			{Timestamp: start, Close: 1},
			{Timestamp: start.Add(time.Hour), Close: 2},
		},
	})
}

// indicatorFrame returns n hourly bars whose indicator columns start
// undefined and become defined part way through, as after a warm-up.
func indicatorFrame(t *testing.T, n int) *domain.Frame {
	t.Helper()
	start := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	bars := make([]*domain.Bar, n)
	for i := range bars {
		c := 100 + float64(i%7)
		bars[i] = &domain.Bar{Timestamp: start.Add(time.Duration(i) * time.Hour), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10}
	}
	frame := domain.NewFrame(&domain.BarSeries{Symbol: "ETH/USDT", Timeframe: "1h", Bars: bars})

	column := func(warmup int, f func(i int) float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			if i < warmup {
				out[i] = domain.Undefined()
				continue
			}
			out[i] = f(i)
		}
		return out
	}
	cols := map[domain.Field][]float64{
		domain.FieldSMA50:                column(5, func(i int) float64 { return 102 }),
		domain.FieldSMA200:               column(10, func(i int) float64 { return 101 }),
		domain.FieldBollingerUpper:       column(5, func(i int) float64 { return 106 }),
		domain.FieldBollingerLower:       column(5, func(i int) float64 { return 98 }),
		domain.FieldTenkan:               column(3, func(i int) float64 { return 103 }),
		domain.FieldKijun:                column(4, func(i int) float64 { return 102.5 }),
		domain.FieldSenkouA:              column(8, func(i int) float64 { return 104 }),
		domain.FieldSenkouB:              column(12, func(i int) float64 { return 99 }),
		domain.FieldMACD:                 column(6, func(i int) float64 { return float64(i%3) - 1 }),
		domain.FieldSignalLine:           column(9, func(i int) float64 { return 0.2 }),
		domain.FieldRSI:                  column(7, func(i int) float64 { return 20 + float64(i%60) }),
		domain.FieldHistoricalVolatility: column(11, func(i int) float64 { return 0.4 }),
	}
	for field, values := range cols {
		require.NoError(t, frame.SetColumn(field, values))
	}
	return frame
}

func newTestRenderer(t *testing.T, dir string, exportCSV bool) (*Renderer, *mockLogger) {
	t.Helper()
	logger := &mockLogger{}
	r, err := NewRenderer(Config{Dir: dir, Logger: logger, ExportCSV: exportCSV, Width: 6 * vg.Inch, Height: 6 * vg.Inch})
	require.NoError(t, err)
	return r, logger
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "BTCUSDT_1h_20240506T080000.png", FileName(testFrame(), "png"))
	assert.Equal(t, "BTCUSDT_1h_20240506T080000.csv", FileName(testFrame(), "csv"))
}

func TestPanels(t *testing.T) {
	panels, err := Panels(indicatorFrame(t, 30))
	require.NoError(t, err)
	require.Len(t, panels, 4)

	titles := make([]string, len(panels))
	for i, p := range panels {
		titles[i] = p.Title.Text
	}
	assert.Equal(t, []string{"ETH/USDT 1h price", "MACD", "RSI", "Historical Volatility"}, titles)
	assert.Equal(t, 0.0, panels[2].Y.Min)
	assert.Equal(t, 100.0, panels[2].Y.Max)
}

func TestPanels_WithoutIndicators(t *testing.T) {
	panels, err := Panels(testFrame())
	require.NoError(t, err)
	assert.Len(t, panels, 4)
}

func TestDefinedPoints(t *testing.T) {
	nan := domain.Undefined()
	pts := definedPoints([]float64{1, 2, 3, 4}, []float64{nan, 5, nan, 7})
	assert.Equal(t, plotter.XYs{{X: 2, Y: 5}, {X: 4, Y: 7}}, pts)
	assert.Empty(t, definedPoints([]float64{1, 2}, nil))
}

func TestCloudRing(t *testing.T) {
	nan := domain.Undefined()
	xs := []float64{1, 2, 3, 4}

	tests := []struct {
		name string
		a, b []float64
		want plotter.XYs
	}{
		{
			name: "closes over rows carrying both spans",
			a:    []float64{nan, 10, 11, 12},
			b:    []float64{nan, nan, 8, 9},
			want: plotter.XYs{{X: 3, Y: 11}, {X: 4, Y: 12}, {X: 4, Y: 9}, {X: 3, Y: 8}},
		},
		{
			name: "single shared row draws nothing",
			a:    []float64{nan, nan, nan, 12},
			b:    []float64{nan, nan, 8, 9},
			want: nil,
		},
		{
			name: "missing span draws nothing",
			a:    []float64{1, 2, 3, 4},
			b:    nil,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cloudRing(xs, tt.a, tt.b))
		})
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(indicatorFrame(t, 40), &buf, 6*vg.Inch, 6*vg.Inch))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRender(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	r, logger := newTestRenderer(t, dir, false)

	r.Render(context.Background(), indicatorFrame(t, 30))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ETHUSDT_1h_20240507T050000.png", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
	assert.Len(t, logger.infoMsgs, 1)
	assert.Empty(t, logger.errorMsgs)
}

func TestRender_ExportCSV(t *testing.T) {
	dir := t.TempDir()
	r, logger := newTestRenderer(t, dir, true)

	r.Render(context.Background(), testFrame())

	_, err := os.Stat(filepath.Join(dir, "BTCUSDT_1h_20240506T080000.png"))
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "BTCUSDT_1h_20240506T080000.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "timestamp,open,high,low,close,volume,ema_short"))
	assert.Empty(t, logger.errorMsgs)
}

func TestRender_EmptyFrameIsSkipped(t *testing.T) {
	dir := t.TempDir()
	r, logger := newTestRenderer(t, dir, true)

	r.Render(context.Background(), nil)
	r.Render(context.Background(), domain.NewFrame(&domain.BarSeries{Symbol: "BTC/USDT", Timeframe: "1h"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, logger.infoMsgs)
}

func TestRender_WriteFailureIsLogged(t *testing.T) {
	dir, err := os.MkdirTemp("", "chart_test")
	require.NoError(t, err)

	r, logger := newTestRenderer(t, dir, true)
	require.NoError(t, os.RemoveAll(dir))

	r.Render(context.Background(), testFrame())
	assert.Len(t, logger.errorMsgs, 1)
	assert.Empty(t, logger.infoMsgs)
}

func TestNewRenderer_Validation(t *testing.T) {
	_, err := NewRenderer(Config{Logger: &mockLogger{}})
	assert.Error(t, err)
	_, err = NewRenderer(Config{Dir: "charts"})
	assert.Error(t, err)
}

func TestNewRenderer_DefaultSize(t *testing.T) {
	r, err := NewRenderer(Config{Dir: t.TempDir(), Logger: &mockLogger{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, r.width)
	assert.Equal(t, DefaultHeight, r.height)
}
