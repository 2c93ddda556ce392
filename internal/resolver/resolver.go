// Package resolver decides the authoritative target time for a ticket
// within a slot: a plan timestamp from the ticket, the slot's fixed
// fallback time, or a skip when the plan belongs to a different day.
package resolver

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/okkyPratama/jira-task-automation/internal/jira"
	"github.com/okkyPratama/jira-task-automation/internal/refclock"
	"github.com/okkyPratama/jira-task-automation/internal/schedule"
)

// PlanTimestampLayout is the fixed-offset ISO-8601 variant Jira Cloud
// returns for datetime custom fields. Anything that does not parse with it
// is treated as absent, never as a reason to fail the slot.
const PlanTimestampLayout = "2006-01-02T15:04:05.000-0700"

// Target is the resolved (ticket, slot) decision.
type Target struct {
	Ticket jira.Ticket
	Time   schedule.TimeOfDay
	// Skip means the ticket's plan date is not today in the reference
	// zone. A hard veto, not a fallback.
	Skip bool
	// Fallback means the slot's fixed time was used because the plan
	// timestamp was absent or unparseable.
	Fallback bool
}

// Resolver computes per-ticket target times against the reference clock.
type Resolver struct {
	clock  refclock.Clock
	logger zerolog.Logger
}

// New builds a Resolver.
func New(clock refclock.Clock, logger zerolog.Logger) *Resolver {
	return &Resolver{
		clock:  clock,
		logger: logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns the target for one ticket under one slot definition.
//
// Ticket-relative slots read the designated plan timestamp. A parsed plan
// whose calendar date differs from today vetoes the ticket: the search
// query only constrains the plan-start field, so this check is the sole
// backstop for the other timestamp. Fixed slots always use the fallback
// time.
func (r *Resolver) Resolve(ticket jira.Ticket, def schedule.Definition) Target {
	var raw string
	switch def.Source {
	case schedule.TimePlanStart:
		raw = ticket.PlanStartRaw
	case schedule.TimePlanEnd:
		raw = ticket.PlanEndRaw
	default:
		return Target{Ticket: ticket, Time: def.FallbackTime}
	}

	if raw == "" {
		r.logger.Warn().
			Str("ticket", ticket.Key).
			Str("slot", def.Name).
			Str("fallback", def.FallbackTime.String()).
			Msg("plan timestamp absent, using slot fallback time")
		return Target{Ticket: ticket, Time: def.FallbackTime, Fallback: true}
	}

	planned, err := time.Parse(PlanTimestampLayout, raw)
	if err != nil {
		r.logger.Warn().
			Str("ticket", ticket.Key).
			Str("slot", def.Name).
			Str("raw", raw).
			Str("fallback", def.FallbackTime.String()).
			Msg("plan timestamp unparseable, using slot fallback time")
		return Target{Ticket: ticket, Time: def.FallbackTime, Fallback: true}
	}

	now := r.clock.Now()
	local := planned.In(r.clock.Location())
	if !refclock.SameDay(local, now, r.clock.Location()) {
		r.logger.Info().
			Str("ticket", ticket.Key).
			Str("slot", def.Name).
			Str("plan_date", local.Format("2006-01-02")).
			Str("today", now.Format("2006-01-02")).
			Msg("plan date is not today, skipping ticket")
		return Target{Ticket: ticket, Skip: true}
	}

	return Target{Ticket: ticket, Time: schedule.FromClock(local)}
}
