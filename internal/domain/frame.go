package domain

import (
	"fmt"
	"time"
)

// Field names a statistic of the analytics frame.
type Field string

const (
	FieldOpen   Field = "open"
	FieldHigh   Field = "high"
	FieldLow    Field = "low"
	FieldClose  Field = "close"
	FieldVolume Field = "volume"

	FieldEMAShort             Field = "ema_short"
	FieldEMALong              Field = "ema_long"
	FieldMACD                 Field = "macd"
	FieldSignalLine           Field = "signal_line"
	FieldRSI                  Field = "rsi"
	FieldSMA50                Field = "sma_50"
	FieldSMA200               Field = "sma_200"
	FieldBollingerMid         Field = "bollinger_mid"
	FieldBollingerStd         Field = "bollinger_std"
	FieldBollingerUpper       Field = "bollinger_upper"
	FieldBollingerLower       Field = "bollinger_lower"
	FieldHistoricalVolatility Field = "historical_volatility"
	FieldTenkan               Field = "tenkan"
	FieldKijun                Field = "kijun"
	FieldSenkouA              Field = "senkou_a"
	FieldSenkouB              Field = "senkou_b"
	FieldChikou               Field = "chikou"

	FieldVaR95       Field = "var_95"
	FieldES95        Field = "es_95"
	FieldMaxDrawdown Field = "max_drawdown"

	FieldSharpe  Field = "sharpe"
	FieldSortino Field = "sortino"
	FieldCalmar  Field = "calmar"
)

// ColumnFields lists the per-row statistics in display/export order.
var ColumnFields = []Field{
	FieldEMAShort, FieldEMALong, FieldMACD, FieldSignalLine, FieldRSI,
	FieldSMA50, FieldSMA200,
	FieldBollingerMid, FieldBollingerStd, FieldBollingerUpper, FieldBollingerLower,
	FieldHistoricalVolatility,
	FieldTenkan, FieldKijun, FieldSenkouA, FieldSenkouB, FieldChikou,
	FieldVaR95, FieldES95, FieldMaxDrawdown,
}

// PerformanceSummary holds the whole-history ratios of a frame. They are
// computed once and are the same for every row.
type PerformanceSummary struct {
	Sharpe  float64
	Sortino float64
	Calmar  float64
}

// UndefinedSummary returns a summary with every ratio undefined.
func UndefinedSummary() PerformanceSummary {
	return PerformanceSummary{Sharpe: Undefined(), Sortino: Undefined(), Calmar: Undefined()}
}

// Frame is a bar series annotated with per-index statistic columns and the
// whole-history performance summary. A frame belongs to one polling cycle.
type Frame struct {
	Series  *BarSeries
	Summary PerformanceSummary
	columns map[Field][]float64
}

// NewFrame creates an empty frame over series.
func NewFrame(series *BarSeries) *Frame {
	return &Frame{
		Series:  series,
		Summary: UndefinedSummary(),
		columns: make(map[Field][]float64),
	}
}

// NewFrameWithColumns creates a frame over series holding every given column.
// Each column must carry one value per bar of series; later sets win on
// duplicate fields.
func NewFrameWithColumns(series *BarSeries, sets ...map[Field][]float64) *Frame {
	frame := NewFrame(series)
	for _, set := range sets {
		for field, values := range set {
			frame.columns[field] = values
		}
	}
	return frame
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.Series.Len()
}

// SetColumn stores values for field. values must have one entry per row.
func (f *Frame) SetColumn(field Field, values []float64) error {
	if len(values) != f.Len() {
		return fmt.Errorf("column %s has %d values, frame has %d rows", field, len(values), f.Len())
	}
	f.columns[field] = values
	return nil
}

// Column returns the values of field, or nil when the field is not a stored
// column. Raw bar fields are materialised on demand.
func (f *Frame) Column(field Field) []float64 {
	if col, ok := f.columns[field]; ok {
		return col
	}
	switch field {
	case FieldClose, FieldOpen, FieldHigh, FieldLow, FieldVolume:
		out := make([]float64, f.Len())
		for i, b := range f.Series.Bars {
			out[i] = barField(b, field)
		}
		return out
	}
	return nil
}

// Value returns field at row i. Unknown fields and out-of-range rows are undefined.
func (f *Frame) Value(field Field, i int) float64 {
	if i < 0 || i >= f.Len() {
		return Undefined()
	}
	switch field {
	case FieldClose, FieldOpen, FieldHigh, FieldLow, FieldVolume:
		return barField(f.Series.Bars[i], field)
	case FieldSharpe:
		return f.Summary.Sharpe
	case FieldSortino:
		return f.Summary.Sortino
	case FieldCalmar:
		return f.Summary.Calmar
	}
	col, ok := f.columns[field]
	if !ok {
		return Undefined()
	}
	return col[i]
}

// Row returns a view of row i.
func (f *Frame) Row(i int) Row {
	return Row{frame: f, index: i}
}

// Latest returns the last row. Calling it on an empty frame yields a row
// whose every value is undefined.
func (f *Frame) Latest() Row {
	return f.Row(f.Len() - 1)
}

// Row is a read-only view of one frame index.
type Row struct {
	frame *Frame
	index int
}

// Index returns the row position within the frame.
func (r Row) Index() int {
	return r.index
}

// Timestamp returns the bar timestamp of the row, or the zero time when out of range.
func (r Row) Timestamp() time.Time {
	if r.index < 0 || r.index >= r.frame.Len() {
		return time.Time{}
	}
	return r.frame.Series.Bars[r.index].Timestamp
}

// Get returns the value of field at this row.
func (r Row) Get(field Field) float64 {
	return r.frame.Value(field, r.index)
}

func barField(b *Bar, field Field) float64 {
	switch field {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldVolume:
		return b.Volume
	default:
		return b.Close
	}
}
