// Package waiter blocks until a target wall-clock time with sub-millisecond
// accuracy. Sleeping coarsely the whole way overshoots the target by the
// sleep granularity, and sleeping finely the whole way burns CPU for
// minutes, so the wait narrows its pause duration as the deadline
// approaches and finishes with a tight poll for the final microseconds.
package waiter

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/okkyPratama/jira-task-automation/internal/refclock"
	"github.com/okkyPratama/jira-task-automation/internal/schedule"
	"github.com/okkyPratama/jira-task-automation/internal/telemetry"
)

// Sleep brackets, widest first. Each row applies while more than Threshold
// remains until the target.
var brackets = []struct {
	Threshold time.Duration
	Pause     time.Duration
}{
	{Threshold: time.Minute, Pause: 30 * time.Second},
	{Threshold: time.Second, Pause: 500 * time.Millisecond},
	{Threshold: 10 * time.Millisecond, Pause: time.Millisecond},
	{Threshold: 100 * time.Microsecond, Pause: 100 * time.Microsecond},
}

const heartbeatInterval = 30 * time.Second

// Waiter waits for target times read off a reference clock.
type Waiter struct {
	clock  refclock.Clock
	logger zerolog.Logger

	// Seams for tests; default to real sleeping and a scheduler yield.
	sleep func(time.Duration)
	spin  func()
}

// New builds a Waiter on the given clock.
func New(clock refclock.Clock, logger zerolog.Logger) *Waiter {
	return &Waiter{
		clock:  clock,
		logger: logger.With().Str("component", "waiter").Logger(),
		sleep:  time.Sleep,
		spin:   runtime.Gosched,
	}
}

// WaitUntil blocks until the clock's time-of-day reaches target, then
// returns. If target already passed today it returns immediately. The
// context is checked on every polling iteration, so cancellation takes at
// most one pause to take effect.
func (w *Waiter) WaitUntil(ctx context.Context, target schedule.TimeOfDay) error {
	w.logger.Info().Str("target", target.String()).Msg("waiting for target time")

	// Explicit heartbeat state, advanced on each poll tick.
	lastHeartbeat := w.clock.Now()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := w.clock.Now()
		targetInstant := target.On(now)

		if !now.Before(targetInstant) {
			overshoot := now.Sub(targetInstant)
			telemetry.WaitOvershootSeconds.Observe(overshoot.Seconds())
			w.logger.Info().
				Str("reached_at", refclock.Timestamp(now)).
				Dur("overshoot", overshoot).
				Msg("target time reached")
			return nil
		}

		remaining := targetInstant.Sub(now)
		if now.Sub(lastHeartbeat) >= heartbeatInterval {
			lastHeartbeat = now
			w.logger.Info().
				Str("target", target.String()).
				Dur("remaining", remaining).
				Msg("still waiting")
		}

		w.pause(remaining)
	}
}

func (w *Waiter) pause(remaining time.Duration) {
	for _, b := range brackets {
		if remaining > b.Threshold {
			w.sleep(b.Pause)
			return
		}
	}
	// Final sub-hundred-microsecond window: poll without sleeping.
	w.spin()
}
