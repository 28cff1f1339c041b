package monitor

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"vault-liquidity-alerts/internal/alerting"
	"vault-liquidity-alerts/internal/config"
	"vault-liquidity-alerts/internal/fetcher"
)

type stubFetcher struct {
	readings []fetcher.Reading
	errs     []error
	calls    int
}

func (s *stubFetcher) FetchLiquidity(ctx context.Context) (fetcher.Reading, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return fetcher.Reading{}, s.errs[i]
	}
	return s.readings[i], nil
}

type stubNotifier struct {
	notes []alerting.Notification
	err   error
}

func (s *stubNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.notes = append(s.notes, note)
	return nil
}

func reading(value string) fetcher.Reading {
	v, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return fetcher.Reading{
		Raw:        big.NewInt(0),
		Value:      v,
		Symbol:     "USDC",
		Decimals:   6,
		ObservedAt: time.Now().UTC(),
	}
}

func alertConfig(threshold float64) *config.Config {
	return &config.Config{
		Alerting: config.AlertingConfig{Enabled: true, Threshold: threshold},
	}
}

func TestPollFetchFailureLeavesStateUntouched(t *testing.T) {
	f := &stubFetcher{errs: []error{errors.New("rpc unreachable")}}
	m := New(alertConfig(5000), f, nil, zerolog.Nop())

	if err := m.Poll(context.Background()); err == nil {
		t.Fatal("fetch failure should surface as an error")
	}
	if m.State().HasPrevious {
		t.Fatal("a failed cycle must not record a previous value")
	}
}

func TestPollTracksPreviousValue(t *testing.T) {
	f := &stubFetcher{readings: []fetcher.Reading{reading("100"), reading("150")}}
	m := New(&config.Config{}, f, nil, zerolog.Nop())

	if err := m.Poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if err := m.Poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}

	state := m.State()
	if !state.Previous.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("previous = %s, want 150", state.Previous)
	}
}

func TestPollSendsSingleAlertWhileAboveThreshold(t *testing.T) {
	f := &stubFetcher{readings: []fetcher.Reading{reading("4000"), reading("6000"), reading("7000")}}
	n := &stubNotifier{}
	m := New(alertConfig(5000), f, n, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if err := m.Poll(context.Background()); err != nil {
			t.Fatalf("poll %d: %v", i, err)
		}
	}

	if len(n.notes) != 1 {
		t.Fatalf("expected exactly one alert, got %d", len(n.notes))
	}
	note := n.notes[0]
	if note.Kind != alerting.KindThresholdCrossed {
		t.Fatalf("unexpected notification kind %q", note.Kind)
	}
	if !note.Liquidity.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("alert should carry the crossing reading, got %s", note.Liquidity)
	}
}

func TestPollNotifierFailureKeepsFlagClear(t *testing.T) {
	f := &stubFetcher{readings: []fetcher.Reading{reading("6000")}}
	n := &stubNotifier{err: errors.New("telegram down")}
	m := New(alertConfig(5000), f, n, zerolog.Nop())

	if err := m.Poll(context.Background()); err != nil {
		t.Fatalf("a notifier failure must not fail the cycle: %v", err)
	}

	state := m.State()
	if state.AlertSent {
		t.Fatal("alert flag must stay clear after a failed send")
	}
	if !state.HasPrevious {
		t.Fatal("previous value must still be recorded")
	}
}

func TestPollWithoutNotifierStillTracksState(t *testing.T) {
	f := &stubFetcher{readings: []fetcher.Reading{reading("6000")}}
	m := New(alertConfig(5000), f, nil, zerolog.Nop())

	if err := m.Poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if m.State().AlertSent {
		t.Fatal("no notifier means no confirmed send, the flag must stay clear")
	}
}
