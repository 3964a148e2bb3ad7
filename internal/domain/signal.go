package domain

import "time"

// SignalState holds the buy/sell booleans derived from the latest analytics row.
type SignalState struct {
	Buy  bool
	Sell bool
}

// Action resolves the state to a single action. Buy is checked before sell,
// so a state with both flags set reports BUY.
func (s SignalState) Action() Action {
	switch {
	case s.Buy:
		return ActionBuy
	case s.Sell:
		return ActionSell
	default:
		return ActionNeutral
	}
}

// Differs reports whether either flag differs from other.
func (s SignalState) Differs(other SignalState) bool {
	return s.Buy != other.Buy || s.Sell != other.Sell
}

// SignalEvent records one emitted signal transition.
type SignalEvent struct {
	ID         string      // Unique event id
	CycleID    string      // Polling cycle that produced the event
	Symbol     string      // Trading symbol as configured (e.g. "BTC/USDT")
	Timeframe  string      // Bar interval (e.g. "1h")
	Exchange   string      // Data source id
	Previous   SignalState // State before the transition
	Current    SignalState // State after the transition
	Action     Action      // Current.Action()
	Close      float64     // Close of the latest bar
	BarTime    time.Time   // Timestamp of the latest bar
	RSI        float64     // Latest rsi (NaN when undefined)
	MACD       float64     // Latest macd
	SignalLine float64     // Latest signal line
	DetectedAt time.Time   // Wall-clock time of detection
}
