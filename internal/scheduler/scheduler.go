package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TickFunc performs one poll cycle.
type TickFunc func(ctx context.Context) error

// Options tune loop behaviour.
type Options struct {
	// Interval is the delay after a successful cycle.
	Interval time.Duration
	// ErrorBackoff is the fixed delay after a failed cycle. Not exponential,
	// not jittered.
	ErrorBackoff time.Duration
	StartupDelay time.Duration
}

// Loop drives sequential execution of poll cycles. One tick runs at a time;
// the only suspension points are the two timed delays.
type Loop struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Loop instance.
func New(opts Options, logger zerolog.Logger) *Loop {
	if opts.Interval <= 0 {
		panic("loop interval must be positive")
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = 5 * time.Minute
	}
	return &Loop{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking the tick function until ctx is cancelled. A tick runs
// immediately on entry (after the optional startup delay); each subsequent
// tick follows a full interval or error-backoff sleep.
func (l *Loop) Run(ctx context.Context, tick TickFunc) error {
	if l.opts.StartupDelay > 0 {
		if err := l.wait(ctx, l.opts.StartupDelay); err != nil {
			return err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := l.opts.Interval
		if err := tick(ctx); err != nil {
			l.logger.Error().Err(err).Dur("retry_in", l.opts.ErrorBackoff).Msg("cycle failed")
			delay = l.opts.ErrorBackoff
		}

		if err := l.wait(ctx, delay); err != nil {
			return err
		}
	}
}

func (l *Loop) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
