package strategy

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/ports"
	"cryptoSignalWatch/internal/strategy/analytics"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.debugMsgs = append(m.debugMsgs, msg)
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		logger  ports.Logger
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     DefaultConfig(),
			logger:  &mockLogger{},
			wantErr: false,
		},
		{
			name:    "nil logger",
			cfg:     DefaultConfig(),
			logger:  nil,
			wantErr: true,
		},
		{
			name:    "thresholds out of range",
			cfg:     Config{RSIOversold: 0, RSIOverbought: 70},
			logger:  &mockLogger{},
			wantErr: true,
		},
		{
			name:    "oversold above overbought",
			cfg:     Config{RSIOversold: 80, RSIOverbought: 70},
			logger:  &mockLogger{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg, tt.logger)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, s)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestRequiredDataPoints(t *testing.T) {
	s, err := New(DefaultConfig(), &mockLogger{})
	require.NoError(t, err)
	assert.Equal(t, 200, s.RequiredDataPoints())

	s, err = New(Config{RSIOversold: 30, RSIOverbought: 70}, &mockLogger{})
	require.NoError(t, err)
	assert.Equal(t, 200, s.RequiredDataPoints())
}

// rowFrame builds a one-row frame holding the given statistic values.
func rowFrame(t *testing.T, close float64, values map[domain.Field]float64) *domain.Frame {
	t.Helper()
	series := &domain.BarSeries{
		Symbol:    "BTC/USDT",
		Timeframe: "1h",
		Bars: []*domain.Bar{
			{Timestamp: time.Now(), Open: close, High: close, Low: close, Close: close},
		},
	}
	frame := domain.NewFrame(series)
	for field, v := range values {
		require.NoError(t, frame.SetColumn(field, []float64{v}))
	}
	return frame
}

func buyRow() map[domain.Field]float64 {
	return map[domain.Field]float64{
		domain.FieldMACD:           1.5,
		domain.FieldSignalLine:     1.0,
		domain.FieldRSI:            25,
		domain.FieldSMA50:          95,
		domain.FieldSMA200:         90,
		domain.FieldBollingerUpper: 120,
		domain.FieldBollingerLower: 101,
	}
}

func sellRow() map[domain.Field]float64 {
	return map[domain.Field]float64{
		domain.FieldMACD:           -1.0,
		domain.FieldSignalLine:     0.5,
		domain.FieldRSI:            80,
		domain.FieldSMA50:          105,
		domain.FieldSMA200:         110,
		domain.FieldBollingerUpper: 99,
		domain.FieldBollingerLower: 80,
	}
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	s, err := New(DefaultConfig(), &mockLogger{})
	require.NoError(t, err)

	t.Run("all buy conditions hold", func(t *testing.T) {
		state := s.Evaluate(ctx, rowFrame(t, 100, buyRow()))
		assert.Equal(t, domain.SignalState{Buy: true}, state)
		assert.Equal(t, domain.ActionBuy, state.Action())
	})

	t.Run("all sell conditions hold", func(t *testing.T) {
		state := s.Evaluate(ctx, rowFrame(t, 100, sellRow()))
		assert.Equal(t, domain.SignalState{Sell: true}, state)
		assert.Equal(t, domain.ActionSell, state.Action())
	})

	t.Run("rsi exactly at threshold is not oversold", func(t *testing.T) {
		values := buyRow()
		values[domain.FieldRSI] = 30
		assert.Equal(t, domain.SignalState{}, s.Evaluate(ctx, rowFrame(t, 100, values)))
	})

	t.Run("one failing conjunct clears buy", func(t *testing.T) {
		values := buyRow()
		values[domain.FieldMACD] = 0.5
		assert.False(t, s.Evaluate(ctx, rowFrame(t, 100, values)).Buy)
	})

	for _, field := range []domain.Field{
		domain.FieldMACD, domain.FieldSignalLine, domain.FieldRSI, domain.FieldSMA50,
		domain.FieldSMA200, domain.FieldBollingerUpper, domain.FieldBollingerLower,
	} {
		t.Run("undefined "+string(field)+" yields no signal", func(t *testing.T) {
			buy := buyRow()
			buy[field] = math.NaN()
			assert.Equal(t, domain.SignalState{}, s.Evaluate(ctx, rowFrame(t, 100, buy)))

			sell := sellRow()
			sell[field] = math.NaN()
			assert.Equal(t, domain.SignalState{}, s.Evaluate(ctx, rowFrame(t, 100, sell)))
		})
	}

	t.Run("missing columns yield no signal", func(t *testing.T) {
		assert.Equal(t, domain.SignalState{}, s.Evaluate(ctx, rowFrame(t, 100, nil)))
	})
}

func TestEvaluate_WarnsOnShortHistory(t *testing.T) {
	logger := &mockLogger{}
	s, err := New(DefaultConfig(), logger)
	require.NoError(t, err)

	s.Evaluate(context.Background(), rowFrame(t, 100, buyRow()))
	assert.Len(t, logger.warnMsgs, 1)
}

func TestEvaluate_FlatThenRisingSeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]*domain.Bar, 300)
	for i := range bars {
		c := 100.0
		if i >= 250 {
			c = 100 + float64(i-249)
		}
		bars[i] = &domain.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c, High: c, Low: c, Close: c, Volume: 1,
		}
	}
	series := &domain.BarSeries{Symbol: "BTC/USDT", Timeframe: "1h", Exchange: "binance", Bars: bars}
	frame := analytics.NewDefaultPipeline().Compute(series)

	s, err := New(DefaultConfig(), &mockLogger{})
	require.NoError(t, err)

	for i := 0; i < frame.Len(); i++ {
		state := s.EvaluateRow(frame.Row(i))
		// rsi never drops below the oversold threshold
		assert.False(t, state.Buy, "index %d", i)
		// close never falls below sma_50 while prices rise
		assert.False(t, state.Sell, "index %d", i)
	}

	assert.Equal(t, domain.SignalState{}, s.Evaluate(context.Background(), frame))
}
