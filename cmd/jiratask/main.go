package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/okkyPratama/jira-task-automation/internal/config"
	"github.com/okkyPratama/jira-task-automation/internal/executor"
	"github.com/okkyPratama/jira-task-automation/internal/jira"
	"github.com/okkyPratama/jira-task-automation/internal/logging"
	"github.com/okkyPratama/jira-task-automation/internal/refclock"
	"github.com/okkyPratama/jira-task-automation/internal/resolver"
	"github.com/okkyPratama/jira-task-automation/internal/runner"
	"github.com/okkyPratama/jira-task-automation/internal/schedule"
	"github.com/okkyPratama/jira-task-automation/internal/waiter"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "jiratask",
	Short: "Jira support task automation - transitions issues at precise times",
	Long: "jiratask advances Jira SUPPORT tickets through their workday state machine " +
		"at exact wall-clock times, so tracked time sums to exactly 8 hours per day.",
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dispatchCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(durationCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it).
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

// loadSchedule returns the active schedule, honoring the override file.
func loadSchedule() (schedule.Schedule, error) {
	if cfg.ScheduleFile == "" {
		return schedule.Default(), nil
	}
	sched, err := schedule.LoadFile(cfg.ScheduleFile)
	if err != nil {
		return schedule.Schedule{}, err
	}
	logger.Info().Str("file", cfg.ScheduleFile).Msg("schedule override loaded")
	return sched, nil
}

// buildRunner wires the slot runner: Jira client, principal discovery,
// resolver, waiter, and executor. The account ID is fixed on the runner at
// construction, so every invocation queries the same principal.
func buildRunner(ctx context.Context, sched schedule.Schedule) (*runner.Runner, *refclock.System, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, nil, err
	}

	clock := refclock.NewSystem(cfg.TZOffsetHours)

	client, err := jira.New(jira.Config{
		BaseURL:        cfg.JiraDomain,
		Email:          cfg.JiraEmail,
		APIToken:       cfg.JiraAPIToken,
		Timeout:        cfg.HTTPTimeout,
		MaxResults:     cfg.SearchMax,
		PlanStartField: cfg.PlanStartField,
		PlanEndField:   cfg.PlanEndField,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("build jira client: %w", err)
	}

	user, err := client.Myself(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch authenticated principal: %w", err)
	}
	logger.Info().
		Str("display_name", user.DisplayName).
		Str("email", user.EmailAddress).
		Str("account_id", user.AccountID).
		Msg("authenticated")

	res := resolver.New(clock, logger)
	wait := waiter.New(clock, logger)
	exec := executor.New(client, clock, logger)

	r := runner.New(client, res, wait, exec, clock, sched, user.AccountID, cfg.PlanStartField, logger)
	return r, clock, nil
}
