package monitor

import (
	"github.com/shopspring/decimal"
)

// State is the process-lifetime monitor state, owned by the polling loop.
// AlertSent is true only while the latest successful reading was at or above
// the threshold, which yields exactly one notification per excursion.
type State struct {
	Previous    decimal.Decimal
	HasPrevious bool
	AlertSent   bool
}

// MarkAlerted records a confirmed notification delivery. Evaluate never sets
// the flag itself: a failed send must leave it clear so the next qualifying
// cycle retries.
func (s *State) MarkAlerted() {
	s.AlertSent = true
}

// Report describes one evaluated reading.
type Report struct {
	Value          decimal.Decimal
	Delta          decimal.Decimal
	DeltaPct       decimal.Decimal
	Direction      string
	HasDelta       bool
	AboveThreshold bool
	ShouldAlert    bool
}

var dec100 = decimal.NewFromInt(100)

// Evaluate compares a new scaled reading against the previous state and the
// alert threshold. It returns the report and the successor state; the
// previous value is updated unconditionally, first reading included. A
// threshold of zero or less disables alerting.
func Evaluate(state State, value, threshold decimal.Decimal) (Report, State) {
	report := Report{Value: value}

	if state.HasPrevious {
		report.HasDelta = true
		report.Delta = value.Sub(state.Previous)
		if !state.Previous.IsZero() {
			report.DeltaPct = report.Delta.Div(state.Previous).Mul(dec100)
		}
		report.Direction = classifyDirection(report.Delta)
	}

	above := threshold.Sign() > 0 && value.GreaterThanOrEqual(threshold)
	report.AboveThreshold = above
	report.ShouldAlert = above && !state.AlertSent

	next := State{
		Previous:    value,
		HasPrevious: true,
		// Dropping below the threshold re-arms the alert; no notification is
		// sent on the downward crossing itself.
		AlertSent: state.AlertSent && above,
	}

	return report, next
}

func classifyDirection(delta decimal.Decimal) string {
	switch delta.Sign() {
	case 1:
		return "up"
	case -1:
		return "down"
	default:
		return "flat"
	}
}
