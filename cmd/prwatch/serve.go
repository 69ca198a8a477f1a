package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	httphandler "github.com/blakemcanally/pr-status-watcher/internal/adapter/driving/http"
	"github.com/blakemcanally/pr-status-watcher/internal/application"
)

const shutdownTimeout = 10 * time.Second

func runServe(parent context.Context, v *viper.Viper) error {
	// 1. Load configuration and logger (fail fast on invalid values).
	cfg, logger, flush, err := loadConfig(v)
	if err != nil {
		return err
	}
	defer flush()
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"poll_interval", cfg.PollInterval,
		"transport", cfg.Transport,
		"github_username", cfg.GitHubUsername,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database, run migrations and wire adapters.
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	// 4. Start the scheduler and kick off the first cycle right away.
	pollSvc := application.NewPollService(a.fetch)
	if err := pollSvc.Start(ctx, cfg.PollInterval); err != nil {
		return err
	}
	a.fetch.TriggerAsync(context.WithoutCancel(ctx))

	// 5. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(a.board, a.fetch, pollSvc, a.notifications, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	logger.Info("prwatch started",
		"listen_addr", cfg.ListenAddr,
		"poll_interval", cfg.PollInterval,
	)

	// 6. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		pollSvc.Stop()
		return err
	}

	// 7. Graceful shutdown: stop polling, drain HTTP, let a running cycle finish.
	pollSvc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if !waitIdle(shutdownCtx, a.fetch) {
		logger.Warn("fetch cycle still running at shutdown")
	}

	logger.Info("shutdown complete")
	return nil
}

// waitIdle blocks until no cycle is in flight or ctx ends. It reports whether
// the fetcher went idle.
func waitIdle(ctx context.Context, fetch interface{ InFlight() bool }) bool {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for fetch.InFlight() {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
	return true
}
