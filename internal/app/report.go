package app

import (
	"fmt"

	"cryptoSignalWatch/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

type snapshotLine struct {
	label string
	field domain.Field
}

var snapshotLines = []snapshotLine{
	{"Close", domain.FieldClose},
	{"MACD", domain.FieldMACD},
	{"Signal", domain.FieldSignalLine},
	{"RSI", domain.FieldRSI},
	{"50-day SMA", domain.FieldSMA50},
	{"200-day SMA", domain.FieldSMA200},
	{"Bollinger Upper", domain.FieldBollingerUpper},
	{"Bollinger Lower", domain.FieldBollingerLower},
	{"Historical Volatility", domain.FieldHistoricalVolatility},
	{"Tenkan-sen", domain.FieldTenkan},
	{"Kijun-sen", domain.FieldKijun},
	{"Senkou Span A", domain.FieldSenkouA},
	{"Senkou Span B", domain.FieldSenkouB},
	{"Chikou Span", domain.FieldChikou},
	{"VaR (95%)", domain.FieldVaR95},
	{"Expected Shortfall (95%)", domain.FieldES95},
	{"Max Drawdown", domain.FieldMaxDrawdown},
	{"Sharpe Ratio", domain.FieldSharpe},
	{"Sortino Ratio", domain.FieldSortino},
	{"Calmar Ratio", domain.FieldCalmar},
}

// FormatSnapshot renders the latest row of frame as display lines.
func FormatSnapshot(frame *domain.Frame, symbol string) []string {
	row := frame.Latest()
	lines := make([]string, 0, len(snapshotLines)+1)
	lines = append(lines, fmt.Sprintf("Latest data for %s (%s):", symbol, row.Timestamp().UTC().Format(timestampLayout)))
	for _, l := range snapshotLines {
		lines = append(lines, fmt.Sprintf("%s: %s", l.label, formatValue(row.Get(l.field))))
	}
	return lines
}

// FormatAction renders the action line of a signal state at price.
func FormatAction(state domain.SignalState, price float64) string {
	switch state.Action() {
	case domain.ActionBuy:
		return fmt.Sprintf("BUY signal detected at price %s", formatValue(price))
	case domain.ActionSell:
		return fmt.Sprintf("SELL signal detected at price %s", formatValue(price))
	default:
		return "No clear buy or sell signal. Consider holding or conducting further analysis."
	}
}

func formatValue(v float64) string {
	if !domain.IsDefined(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
