package main

import (
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/vncsmyrnk/crowdvote/docs"
	"github.com/vncsmyrnk/crowdvote/internal/adapters/handler/http"
	"github.com/vncsmyrnk/crowdvote/internal/app"
	"github.com/vncsmyrnk/crowdvote/internal/config"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

// @title           crowdvote API
// @version         1.0
// @description     Community governance and crowdfunding with simulated wallet transactions.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.Error("invalid configuration", "event", "config_invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "event", "startup_failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	svc := application.Services
	handler := http.NewHandler(http.Handlers{
		Auth:       http.NewAuthHandler(svc.Auth, cfg.CookieDomain, stdhttp.SameSiteLaxMode),
		Reputation: http.NewReputationHandler(svc.Reputation),
		Voters:     http.NewVoterHandler(svc.Voters),
		Proposals:  http.NewProposalHandler(svc.Proposals, svc.Results),
		Votes:      http.NewVoteHandler(svc.Votes),
		Campaigns:  http.NewCampaignHandler(svc.Campaigns),
	}, svc.Auth, cfg.CORSAllowedOrigins)

	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go runScheduler(ctx, svc.Scheduler, cfg.FinalizeInterval, logger)

	go func() {
		logger.Info("listening", "event", "server_started", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server stopped", "event", "server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down", "event", "server_stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "event", "server_shutdown_failed", "error", err)
	}
}

// runScheduler opens and finalizes due proposals until ctx is done.
func runScheduler(ctx context.Context, scheduler ports.SchedulerService, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := scheduler.ProcessDue(ctx); err != nil {
				logger.Error("scheduled run failed", "event", "scheduler_failed", "error", err)
			}
		}
	}
}
