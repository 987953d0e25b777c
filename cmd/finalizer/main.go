package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/vncsmyrnk/crowdvote/internal/app"
	"github.com/vncsmyrnk/crowdvote/internal/config"
)

// Opens pending proposals whose window started and finalizes active ones
// whose window ended, then exits. Meant to run from cron.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.Error("invalid configuration", "event", "config_invalid", "error", err)
		os.Exit(1)
	}
	if !cfg.UsePostgres() {
		logger.Error("a database is required", "event", "config_invalid")
		os.Exit(1)
	}

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "event", "startup_failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	logger.Info("starting finalization job", "event", "finalizer_started")

	if err := application.Services.Scheduler.ProcessDue(ctx); err != nil {
		logger.Error("finalization failed", "event", "finalizer_failed", "error", err)
		application.Close()
		os.Exit(1)
	}

	logger.Info("finalization completed", "event", "finalizer_done")
}
