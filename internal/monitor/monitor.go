package monitor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"vault-liquidity-alerts/internal/alerting"
	"vault-liquidity-alerts/internal/config"
	"vault-liquidity-alerts/internal/fetcher"
)

// Monitor wires fetching, evaluation, and alerting for a single vault.
type Monitor struct {
	fetcher  fetcher.LiquidityFetcher
	notifier alerting.Notifier
	logger   zerolog.Logger

	threshold decimal.Decimal
	state     State
}

// New constructs the monitor. A nil notifier or a disabled/zero threshold
// turns the threshold check off while delta reporting keeps working.
func New(cfg *config.Config, f fetcher.LiquidityFetcher, notifier alerting.Notifier, logger zerolog.Logger) *Monitor {
	threshold := decimal.Zero
	if cfg.Alerting.Enabled && cfg.Alerting.Threshold > 0 {
		threshold = decimal.NewFromFloat(cfg.Alerting.Threshold)
	}

	return &Monitor{
		fetcher:   f,
		notifier:  notifier,
		logger:    logger.With().Str("component", "monitor").Logger(),
		threshold: threshold,
	}
}

// Poll performs one cycle: fetch, evaluate, report, optionally notify. A
// fetch failure returns an error with the monitor state untouched; the loop
// driver turns that into the error-backoff delay. Notification failures are
// logged and never fail the cycle.
func (m *Monitor) Poll(ctx context.Context) error {
	reading, err := m.fetcher.FetchLiquidity(ctx)
	if err != nil {
		return fmt.Errorf("fetch liquidity: %w", err)
	}

	report, next := Evaluate(m.state, reading.Value, m.threshold)

	m.logReport(reading, report)

	if report.ShouldAlert && m.notifier != nil {
		note := alerting.Notification{
			Kind:       alerting.KindThresholdCrossed,
			ObservedAt: reading.ObservedAt,
			Liquidity:  reading.Value,
			Symbol:     reading.Symbol,
			Threshold:  m.threshold,
			Delta:      report.Delta,
			DeltaPct:   report.DeltaPct,
			HasDelta:   report.HasDelta,
		}
		if err := m.notifier.Notify(ctx, note); err != nil {
			m.logger.Error().Err(err).Msg("failed to dispatch threshold alert")
		} else {
			next.MarkAlerted()
		}
	}

	m.state = next
	return nil
}

// State exposes a copy of the current monitor state.
func (m *Monitor) State() State {
	return m.state
}

func (m *Monitor) logReport(reading fetcher.Reading, report Report) {
	event := m.logger.Info().
		Time("observed_at", reading.ObservedAt).
		Str("liquidity", alerting.FormatAmount(reading.Value)).
		Str("symbol", reading.Symbol)

	if report.HasDelta {
		sign := ""
		if report.Delta.Sign() > 0 {
			sign = "+"
		}
		event = event.
			Str("change", fmt.Sprintf("%s%s", sign, alerting.FormatAmount(report.Delta))).
			Str("change_pct", fmt.Sprintf("%s%s%%", sign, report.DeltaPct.StringFixed(2))).
			Str("direction", report.Direction)
	}

	if m.threshold.Sign() > 0 {
		event = event.
			Str("threshold", alerting.FormatAmount(m.threshold)).
			Bool("above_threshold", report.AboveThreshold)
	}

	event.Msg("available liquidity")
}
