package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoopRunsTicksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ticks := 0
	loop := New(Options{Interval: time.Millisecond, ErrorBackoff: time.Millisecond}, zerolog.Nop())

	err := loop.Run(ctx, func(ctx context.Context) error {
		ticks++
		if ticks >= 3 {
			cancel()
		}
		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ticks < 3 {
		t.Fatalf("expected at least 3 ticks, got %d", ticks)
	}
}

func TestLoopContinuesAfterTickError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ticks := 0
	loop := New(Options{Interval: time.Minute, ErrorBackoff: time.Millisecond}, zerolog.Nop())

	err := loop.Run(ctx, func(ctx context.Context) error {
		ticks++
		if ticks >= 2 {
			cancel()
		}
		return errors.New("fetch failed")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// With the minute-long interval, reaching a second tick proves the
	// error-backoff delay was used instead.
	if ticks != 2 {
		t.Fatalf("expected 2 ticks, got %d", ticks)
	}
}

func TestLoopStartupDelayHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loop := New(Options{Interval: time.Millisecond, StartupDelay: time.Hour}, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx, func(ctx context.Context) error { return nil })
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
