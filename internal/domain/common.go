package domain

import "math"

// Undefined returns the value used for a statistic that cannot be computed
// (window longer than the available history, zero divisor, empty input set).
func Undefined() float64 {
	return math.NaN()
}

// IsDefined reports whether v holds a computed value.
func IsDefined(v float64) bool {
	return !math.IsNaN(v)
}

// Action is the message-level interpretation of a SignalState.
type Action string

const (
	ActionBuy     Action = "BUY"
	ActionSell    Action = "SELL"
	ActionNeutral Action = "NEUTRAL"
)
