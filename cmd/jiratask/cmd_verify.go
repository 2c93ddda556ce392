package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okkyPratama/jira-task-automation/internal/jira"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify Jira credentials and exit",
	RunE:  runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	client, err := jira.New(jira.Config{
		BaseURL:        cfg.JiraDomain,
		Email:          cfg.JiraEmail,
		APIToken:       cfg.JiraAPIToken,
		Timeout:        cfg.HTTPTimeout,
		PlanStartField: cfg.PlanStartField,
		PlanEndField:   cfg.PlanEndField,
	}, logger)
	if err != nil {
		return err
	}

	fmt.Println("Verifying Jira credentials...")
	user, err := client.Myself(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to authenticate, check JIRA_EMAIL and JIRA_API_TOKEN: %w", err)
	}

	fmt.Println()
	fmt.Println("=== Credential Verification ===")
	fmt.Printf("Display Name:  %s\n", user.DisplayName)
	fmt.Printf("Email:         %s\n", user.EmailAddress)
	fmt.Printf("Account ID:    %s\n", user.AccountID)
	fmt.Printf("Jira Domain:   %s\n", cfg.JiraDomain)
	fmt.Println("================================")
	fmt.Println()
	fmt.Println("Credentials verified successfully.")
	return nil
}
