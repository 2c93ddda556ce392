package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okkyPratama/jira-task-automation/internal/dispatcher"
	"github.com/okkyPratama/jira-task-automation/internal/server"
	"github.com/okkyPratama/jira-task-automation/internal/slotlock"
	"github.com/okkyPratama/jira-task-automation/internal/telemetry"
	"github.com/okkyPratama/jira-task-automation/internal/version"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run the daily dispatcher daemon",
	Long: "Stay resident and wake shortly before each slot boundary every weekday, " +
		"running each slot to completion at its exact target time. Exposes health, " +
		"status, and metrics endpoints while running.",
	RunE: runDispatch,
}

func runDispatch(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	logger.Info().Str("version", version.Version).Msg("jiratask dispatcher starting")

	tracerProvider, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName:    "jiratask",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	sched, err := loadSchedule()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	r, clock, err := buildRunner(ctx, sched)
	if err != nil {
		return err
	}

	var lock dispatcher.SlotLocker
	if cfg.SlotLockEnabled {
		slLock, err := slotlock.New(slotlock.Config{
			RedisAddr:     cfg.RedisAddr,
			RedisPassword: cfg.RedisPassword,
			RedisDB:       cfg.RedisDB,
			InstanceID:    cfg.InstanceID,
		}, clock, logger)
		if err != nil {
			return fmt.Errorf("initialize slot lock: %w", err)
		}
		defer func() {
			if err := slLock.Close(); err != nil {
				logger.Error().Err(err).Msg("close slot lock")
			}
		}()
		lock = slLock
	}

	disp := dispatcher.New(r, lock, clock, sched, cfg.DispatchLead, logger)

	ops := server.New(cfg.HTTPAddr(), disp, logger)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr()).Msg("ops server listening")
		if err := ops.HTTPServer().ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("ops server error")
		}
	}()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info().Msg("shutting down gracefully...")
		cancel()
	}()

	err = disp.Run(ctx)

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer timeoutCancel()
	if shutdownErr := ops.HTTPServer().Shutdown(timeoutCtx); shutdownErr != nil {
		logger.Error().Err(shutdownErr).Msg("ops server shutdown failed")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("jiratask dispatcher stopped")
	return nil
}
