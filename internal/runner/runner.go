// Package runner orchestrates one slot invocation: search for eligible
// tickets, resolve each ticket's target time, wait for it, and execute the
// slot's transition, continuing past per-ticket failures.
package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/okkyPratama/jira-task-automation/internal/executor"
	"github.com/okkyPratama/jira-task-automation/internal/jira"
	"github.com/okkyPratama/jira-task-automation/internal/refclock"
	"github.com/okkyPratama/jira-task-automation/internal/resolver"
	"github.com/okkyPratama/jira-task-automation/internal/schedule"
	"github.com/okkyPratama/jira-task-automation/internal/telemetry"
)

// TicketSearcher is the search slice of the ticket service.
type TicketSearcher interface {
	Search(ctx context.Context, jql string) ([]jira.Ticket, error)
}

// Waiter blocks until a target time of day.
type Waiter interface {
	WaitUntil(ctx context.Context, target schedule.TimeOfDay) error
}

// TransitionExecutor applies the slot transition to one ticket.
type TransitionExecutor interface {
	Execute(ctx context.Context, slotName string, ticket jira.Ticket, transitionName string) executor.Outcome
}

// Options control one slot invocation.
type Options struct {
	// Wait blocks on each ticket's resolved target time before executing.
	Wait bool
	// DryRun searches and resolves but never executes transitions.
	DryRun bool
}

// Runner drives slot invocations. The account ID is discovered once at
// process start and fixed here at construction, so every invocation
// queries the same principal.
type Runner struct {
	searcher  TicketSearcher
	resolver  *resolver.Resolver
	waiter    Waiter
	executor  TransitionExecutor
	clock     refclock.Clock
	sched     schedule.Schedule
	accountID string
	planField string
	logger    zerolog.Logger
}

// New builds a Runner.
func New(searcher TicketSearcher, res *resolver.Resolver, w Waiter, exec TransitionExecutor,
	clock refclock.Clock, sched schedule.Schedule, accountID, planStartField string, logger zerolog.Logger) *Runner {
	return &Runner{
		searcher:  searcher,
		resolver:  res,
		waiter:    w,
		executor:  exec,
		clock:     clock,
		sched:     sched,
		accountID: accountID,
		planField: planStartField,
		logger:    logger.With().Str("component", "runner").Logger(),
	}
}

// RunSlot executes one full slot invocation and returns the per-ticket
// outcomes. Zero eligible tickets is a normal, successful result. A failure
// or skip on one ticket never aborts processing of subsequent tickets.
func (r *Runner) RunSlot(ctx context.Context, slot schedule.Slot, opts Options) ([]executor.Outcome, error) {
	def := r.sched.Definition(slot)
	runID := uuid.New().String()
	logger := r.logger.With().Str("slot", def.Name).Str("run_id", runID).Logger()

	logger.Info().
		Str("description", def.Description).
		Str("from_status", def.FromStatus).
		Str("transition", def.TransitionName).
		Msg("running slot")

	jql := r.BuildJQL(def)
	logger.Info().Str("jql", jql).Msg("searching for eligible tickets")

	tickets, err := r.searcher.Search(ctx, jql)
	if err != nil {
		// A failed search degrades to "nothing to do": the slot
		// completes and the next day's run is the retry boundary.
		logger.Error().Err(err).Msg("search failed, treating as zero tickets")
		tickets = nil
	}

	if len(tickets) == 0 {
		logger.Info().Str("from_status", def.FromStatus).Msg("no tickets found today, nothing to transition")
		telemetry.SlotRunsTotal.WithLabelValues(def.Name, "nothing_to_do").Inc()
		return nil, nil
	}

	keys := make([]string, len(tickets))
	for i, t := range tickets {
		keys[i] = t.Key
	}
	logger.Info().Strs("tickets", keys).Msg("found eligible tickets")

	outcomes := make([]executor.Outcome, 0, len(tickets))
	for _, ticket := range tickets {
		outcome, processed, err := r.processTicket(ctx, logger, def, ticket, opts)
		if err != nil {
			// Only context cancellation escapes the per-ticket loop.
			telemetry.SlotRunsTotal.WithLabelValues(def.Name, "error").Inc()
			return outcomes, err
		}
		if processed {
			outcomes = append(outcomes, outcome)
		}
	}

	telemetry.SlotRunsTotal.WithLabelValues(def.Name, "completed").Inc()
	return outcomes, nil
}

func (r *Runner) processTicket(ctx context.Context, logger zerolog.Logger, def schedule.Definition,
	ticket jira.Ticket, opts Options) (executor.Outcome, bool, error) {
	logger.Info().Str("ticket", ticket.Key).Str("summary", ticket.Summary).Msg("processing ticket")

	target := r.resolver.Resolve(ticket, def)
	if target.Skip {
		telemetry.TicketsSkippedTotal.WithLabelValues(def.Name, "date_mismatch").Inc()
		return executor.Outcome{}, false, nil
	}

	if opts.DryRun {
		logger.Info().
			Str("ticket", ticket.Key).
			Str("target", target.Time.String()).
			Msg("dry run, transition not executed")
		return executor.Outcome{}, false, nil
	}

	// Target times differ per ticket, so the wait re-occurs for each one.
	// A target that already passed returns immediately.
	if opts.Wait {
		if err := r.waiter.WaitUntil(ctx, target.Time); err != nil {
			return executor.Outcome{}, false, fmt.Errorf("wait for %s: %w", ticket.Key, err)
		}
	}

	outcome := r.executor.Execute(ctx, def.Name, ticket, def.TransitionName)
	return outcome, true, nil
}

// BuildJQL assembles the primary eligibility filter: tickets assigned to
// the principal, in the slot's from-status, whose plan-start falls within
// today in the reference zone. The resolver's date check independently
// guards the other plan timestamp.
func (r *Runner) BuildJQL(def schedule.Definition) string {
	today := r.clock.Now().Format("2006-01-02")
	cf := customFieldNumber(r.planField)
	return fmt.Sprintf(
		`assignee = %q AND status = %q AND cf[%s] >= "%s 00:00" AND cf[%s] <= "%s 23:59"`,
		r.accountID, def.FromStatus, cf, today, cf, today,
	)
}

func customFieldNumber(field string) string {
	return strings.TrimPrefix(field, "customfield_")
}
