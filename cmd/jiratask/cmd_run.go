package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okkyPratama/jira-task-automation/internal/dispatcher"
	"github.com/okkyPratama/jira-task-automation/internal/runner"
	"github.com/okkyPratama/jira-task-automation/internal/schedule"
)

var (
	runSlotName string
	runNoWait   bool
	runDryRun   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one time slot to completion",
	Long: "Run the automation for a single slot: search for eligible tickets, wait " +
		"for each ticket's exact target time, and apply the slot transition.",
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runSlotName, "slot", "auto", "time slot to run (8AM, 12PM, 1PM, 5PM, or auto)")
	runCmd.Flags().BoolVar(&runNoWait, "no-wait", false, "skip waiting for the exact target time")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "search and resolve only; execute no transitions")
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	sched, err := loadSchedule()
	if err != nil {
		return err
	}

	r, clock, err := buildRunner(cmd.Context(), sched)
	if err != nil {
		return err
	}

	now := clock.Now()
	if dispatcher.IsWeekend(now) {
		logger.Info().Str("weekday", now.Weekday().String()).Msg("no automation runs on weekends")
		return nil
	}

	var slot schedule.Slot
	if runSlotName == "auto" {
		slot = schedule.Detect(now)
		logger.Info().Str("slot", slot.String()).Msg("auto-detected time slot")
	} else {
		if slot, err = schedule.Parse(runSlotName); err != nil {
			return err
		}
	}

	outcomes, err := r.RunSlot(cmd.Context(), slot, runner.Options{
		Wait:   !runNoWait && !runDryRun,
		DryRun: runDryRun,
	})
	if err != nil {
		return fmt.Errorf("run slot %s: %w", slot, err)
	}

	failed := 0
	for _, o := range outcomes {
		if !o.Success() {
			failed++
		}
	}
	logger.Info().
		Str("slot", slot.String()).
		Int("processed", len(outcomes)).
		Int("failed", failed).
		Msg("slot run finished")
	return nil
}
