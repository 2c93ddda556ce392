// Package dispatcher is the long-running daemon that wakes shortly before
// each slot boundary and hands control to the runner, which owns the
// precise wait to the exact second. Weekends never fire.
package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/okkyPratama/jira-task-automation/internal/executor"
	"github.com/okkyPratama/jira-task-automation/internal/refclock"
	"github.com/okkyPratama/jira-task-automation/internal/runner"
	"github.com/okkyPratama/jira-task-automation/internal/schedule"
	"github.com/okkyPratama/jira-task-automation/internal/telemetry"
)

// SlotRunner runs one slot invocation to completion.
type SlotRunner interface {
	RunSlot(ctx context.Context, slot schedule.Slot, opts runner.Options) ([]executor.Outcome, error)
}

// SlotLocker claims a per-(slot, day) lease. Nil disables locking.
type SlotLocker interface {
	Acquire(ctx context.Context, slotName string) (bool, error)
}

// OutcomeSummary is the status-endpoint view of one transition outcome.
type OutcomeSummary struct {
	TicketKey string `json:"ticket_key"`
	Result    string `json:"result"`
	Before    string `json:"before"`
	After     string `json:"after"`
}

// Status is a snapshot of dispatcher state for the ops endpoint.
type Status struct {
	NextSlot     string           `json:"next_slot"`
	NextWake     time.Time        `json:"next_wake"`
	LastSlot     string           `json:"last_slot,omitempty"`
	LastFiredAt  time.Time        `json:"last_fired_at,omitempty"`
	LastOutcomes []OutcomeSummary `json:"last_outcomes,omitempty"`
}

// Dispatcher fires each of the four slots once per weekday.
type Dispatcher struct {
	runner SlotRunner
	lock   SlotLocker
	clock  refclock.Clock
	sched  schedule.Schedule
	lead   time.Duration
	logger zerolog.Logger

	mu     sync.Mutex
	status Status
}

// New builds a Dispatcher. lead is how far before a slot's fallback time
// the runner is woken; the runner's own waiter covers the remainder.
func New(r SlotRunner, lock SlotLocker, clock refclock.Clock, sched schedule.Schedule,
	lead time.Duration, logger zerolog.Logger) *Dispatcher {
	if lead <= 0 {
		lead = time.Minute
	}
	return &Dispatcher{
		runner: r,
		lock:   lock,
		clock:  clock,
		sched:  sched,
		lead:   lead,
		logger: logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Run loops until context cancellation, sleeping until each wake-up point.
// Exactly one slot fires per wake-up, and the slot invocation runs to
// completion (including its precise wait) before the next sleep begins.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info().Dur("lead", d.lead).Msg("dispatcher started")

	for {
		slot, wake := d.NextWake(d.clock.Now())
		d.setNext(slot, wake)

		def := d.sched.Definition(slot)
		d.logger.Info().
			Str("slot", def.Name).
			Time("wake_at", wake).
			Str("target", def.FallbackTime.String()).
			Msg("sleeping until next slot wake-up")

		if err := d.sleepUntil(ctx, wake); err != nil {
			d.logger.Info().Msg("dispatcher stopped")
			return err
		}

		d.fire(ctx, slot)
	}
}

// NextWake returns the next slot due after now and its wake-up instant
// (fallback time minus lead). When all of today's wake-ups have passed, the
// first slot tomorrow is next. Weekday filtering happens at fire time, so
// a Saturday still schedules wake-ups; they just decline to run.
func (d *Dispatcher) NextWake(now time.Time) (schedule.Slot, time.Time) {
	for _, slot := range schedule.All() {
		wake := d.sched.Definition(slot).FallbackTime.On(now).Add(-d.lead)
		if wake.After(now) {
			return slot, wake
		}
	}
	tomorrow := now.AddDate(0, 0, 1)
	first := schedule.SlotStart
	return first, d.sched.Definition(first).FallbackTime.On(tomorrow).Add(-d.lead)
}

func (d *Dispatcher) fire(ctx context.Context, slot schedule.Slot) {
	def := d.sched.Definition(slot)
	now := d.clock.Now()
	telemetry.DispatcherWakeupsTotal.WithLabelValues(def.Name).Inc()

	if IsWeekend(now) {
		d.logger.Info().
			Str("slot", def.Name).
			Str("weekday", now.Weekday().String()).
			Msg("weekend, slot not fired")
		return
	}

	if d.lock != nil {
		acquired, err := d.lock.Acquire(ctx, def.Name)
		if err != nil {
			// Lock infrastructure trouble must not silence the day:
			// fail open and run.
			d.logger.Warn().Err(err).Str("slot", def.Name).Msg("slot lock unavailable, proceeding without it")
		} else if !acquired {
			d.logger.Info().Str("slot", def.Name).Msg("slot claimed by another instance, skipping")
			return
		}
	}

	d.logger.Info().Str("slot", def.Name).Msg("triggering slot")
	outcomes, err := d.runner.RunSlot(ctx, slot, runner.Options{Wait: true})
	if err != nil {
		d.logger.Error().Err(err).Str("slot", def.Name).Msg("slot run aborted")
	} else {
		d.logger.Info().Str("slot", def.Name).Int("outcomes", len(outcomes)).Msg("slot completed")
	}
	d.setLast(def.Name, d.clock.Now(), outcomes)
}

func (d *Dispatcher) sleepUntil(ctx context.Context, wake time.Time) error {
	timer := time.NewTimer(wake.Sub(d.clock.Now()))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Snapshot returns the current dispatcher status.
func (d *Dispatcher) Snapshot() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Dispatcher) setNext(slot schedule.Slot, wake time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status.NextSlot = d.sched.Definition(slot).Name
	d.status.NextWake = wake
}

func (d *Dispatcher) setLast(slotName string, at time.Time, outcomes []executor.Outcome) {
	summaries := make([]OutcomeSummary, len(outcomes))
	for i, o := range outcomes {
		summaries[i] = OutcomeSummary{
			TicketKey: o.TicketKey,
			Result:    string(o.Result),
			Before:    refclock.Timestamp(o.Before),
			After:     refclock.Timestamp(o.After),
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.status.LastSlot = slotName
	d.status.LastFiredAt = at
	d.status.LastOutcomes = summaries
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
