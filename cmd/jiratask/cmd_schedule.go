package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okkyPratama/jira-task-automation/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the automation schedule table and exit",
	RunE:  runSchedule,
}

var durationCmd = &cobra.Command{
	Use:   "duration",
	Short: "Print the working-time duration calculation and exit",
	RunE:  runDuration,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	sched, err := loadSchedule()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("=== Automation Schedule ===")
	fmt.Printf("%-6s %-14s %-22s %-30s %s\n", "Slot", "Target Time", "From Status", "Transition", "Description")
	fmt.Println(strings.Repeat("-", 100))
	for _, slot := range schedule.All() {
		def := sched.Definition(slot)
		fmt.Printf("%-6s %-14s %-22s %-30s %s\n",
			def.Name, def.FallbackTime, def.FromStatus, def.TransitionName, def.Description)
	}
	fmt.Println("===========================")
	fmt.Println()
	return nil
}

func runDuration(cmd *cobra.Command, args []string) error {
	period1 := 4 * time.Hour
	lunch := time.Hour
	period2 := 4 * time.Hour
	total := period1 + period2

	fmt.Println()
	fmt.Println("=== Duration Calculation ===")
	fmt.Printf("Working Period 1: 08:00:00 - 12:00:00 = %s\n", period1)
	fmt.Printf("Lunch Break:      12:00:00 - 13:00:00 = %s (NOT counted)\n", lunch)
	fmt.Printf("Working Period 2: 13:00:00 - 17:00:00 = %s\n", period2)
	fmt.Printf("Total:            %s (%d microseconds)\n", total, total.Microseconds())
	fmt.Println("============================")
	fmt.Println()
	return nil
}
