// Package executor resolves a named transition against a ticket's currently
// available transitions and applies it, capturing microsecond-precision
// before/after timestamps around the remote call.
package executor

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/okkyPratama/jira-task-automation/internal/jira"
	"github.com/okkyPratama/jira-task-automation/internal/refclock"
	"github.com/okkyPratama/jira-task-automation/internal/telemetry"
)

// Result classifies one execution attempt.
type Result string

const (
	// ResultSuccess means Jira acknowledged the transition.
	ResultSuccess Result = "success"
	// ResultFailure means the apply call failed (transport or rejection).
	ResultFailure Result = "failure"
	// ResultNotFound means the named transition is absent from the
	// ticket's available set.
	ResultNotFound Result = "not_found"
	// ResultNoTransitions means the ticket exposes no transitions at all.
	ResultNoTransitions Result = "no_transitions"
)

// Outcome is the audit record for one ticket's execution attempt. Before
// and After bracket the remote call on every path, so elapsed wall time of
// the call stays observable even on failure.
type Outcome struct {
	TicketKey    string
	Result       Result
	TransitionID string
	Before       time.Time
	After        time.Time
	Err          error
}

// Success reports whether the transition was acknowledged.
func (o Outcome) Success() bool {
	return o.Result == ResultSuccess
}

// TransitionService is the slice of the ticket service the executor needs.
type TransitionService interface {
	Transitions(ctx context.Context, issueKey string) ([]jira.Transition, error)
	ApplyTransition(ctx context.Context, issueKey, transitionID string) error
}

// Executor applies named transitions to tickets.
type Executor struct {
	service TransitionService
	clock   refclock.Clock
	logger  zerolog.Logger
}

// New builds an Executor.
func New(service TransitionService, clock refclock.Clock, logger zerolog.Logger) *Executor {
	return &Executor{
		service: service,
		clock:   clock,
		logger:  logger.With().Str("component", "executor").Logger(),
	}
}

// Execute looks up transitionName on the ticket and applies it. Transition
// IDs depend on the ticket's current workflow state, so the available set
// is fetched fresh on every call, never cached. All failure modes are
// non-fatal and scoped to the ticket.
func (e *Executor) Execute(ctx context.Context, slotName string, ticket jira.Ticket, transitionName string) Outcome {
	outcome := Outcome{TicketKey: ticket.Key}

	outcome.Before = e.clock.Now()
	available, err := e.service.Transitions(ctx, ticket.Key)
	if err != nil {
		outcome.After = e.clock.Now()
		outcome.Result = ResultFailure
		outcome.Err = err
		e.record(slotName, outcome)
		e.logger.Error().Err(err).Str("ticket", ticket.Key).Msg("listing transitions failed")
		return outcome
	}

	if len(available) == 0 {
		outcome.After = e.clock.Now()
		outcome.Result = ResultNoTransitions
		e.record(slotName, outcome)
		e.logger.Warn().Str("ticket", ticket.Key).Msg("no transitions available, skipping")
		return outcome
	}

	id, found := FindTransitionID(available, transitionName)
	if !found {
		outcome.After = e.clock.Now()
		outcome.Result = ResultNotFound
		e.record(slotName, outcome)
		names := make([]string, len(available))
		for i, t := range available {
			names[i] = t.Name
		}
		e.logger.Error().
			Str("ticket", ticket.Key).
			Str("transition", transitionName).
			Strs("available", names).
			Msg("transition not found on ticket")
		return outcome
	}

	outcome.TransitionID = id
	e.logger.Info().
		Str("ticket", ticket.Key).
		Str("transition", transitionName).
		Str("transition_id", id).
		Msg("executing transition")

	outcome.Before = e.clock.Now()
	err = e.service.ApplyTransition(ctx, ticket.Key, id)
	outcome.After = e.clock.Now()

	if err != nil {
		outcome.Result = ResultFailure
		outcome.Err = err
		e.record(slotName, outcome)
		e.logger.Error().Err(err).
			Str("ticket", ticket.Key).
			Str("transition", transitionName).
			Str("before", refclock.Timestamp(outcome.Before)).
			Str("after", refclock.Timestamp(outcome.After)).
			Msg("transition failed")
		return outcome
	}

	outcome.Result = ResultSuccess
	e.record(slotName, outcome)
	e.logger.Info().
		Str("ticket", ticket.Key).
		Str("transition", transitionName).
		Str("before", refclock.Timestamp(outcome.Before)).
		Str("after", refclock.Timestamp(outcome.After)).
		Msg("transition succeeded")
	return outcome
}

func (e *Executor) record(slotName string, outcome Outcome) {
	telemetry.TransitionsTotal.WithLabelValues(slotName, string(outcome.Result)).Inc()
}

// FindTransitionID matches transitionName against the available set,
// ignoring case. There is no partial or best-effort matching: either a
// transition's full name matches, or resolution reports not found.
func FindTransitionID(available []jira.Transition, transitionName string) (string, bool) {
	for _, t := range available {
		if strings.EqualFold(t.Name, transitionName) {
			return t.ID, true
		}
	}
	return "", false
}
