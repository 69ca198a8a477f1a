package main

import (
	"context"
	"fmt"
	"log/slog"

	githubadapter "github.com/blakemcanally/pr-status-watcher/internal/adapter/driven/github"
	"github.com/blakemcanally/pr-status-watcher/internal/adapter/driven/notify"
	sqliteadapter "github.com/blakemcanally/pr-status-watcher/internal/adapter/driven/sqlite"
	"github.com/blakemcanally/pr-status-watcher/internal/application"
	"github.com/blakemcanally/pr-status-watcher/internal/config"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
	"github.com/blakemcanally/pr-status-watcher/internal/logging"
)

// app holds the wired components shared by serve and status.
type app struct {
	db            *sqliteadapter.DB
	fetch         *application.FetchService
	board         *application.BoardService
	notifications driven.NotificationStore
}

func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	return logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// newApp opens the database, seeds configured filters and wires the fetch
// pipeline. Close the returned app's db when done.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := sqliteadapter.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("database opened", "path", db.Path())

	prStore := sqliteadapter.NewPRListRepo(db)
	filterStore := sqliteadapter.NewFilterRepo(db)
	notificationStore := sqliteadapter.NewNotificationRepo(db)

	if cfg.HasCheckFilters() {
		if err := filterStore.SetFilters(ctx, cfg.Filters); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed check filters: %w", err)
		}
		logger.Info("check filters seeded from configuration",
			"required", cfg.Filters.RequiredChecks,
			"ignored", cfg.Filters.IgnoredChecks,
		)
	}

	client, err := newSearchClient(cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	notifier := notify.Multi{
		notify.NewLogNotifier(logger),
		notify.NewHistoryNotifier(notificationStore),
	}

	fetch := application.NewFetchService(client, prStore, notifier, application.FetchOptions{
		Username: cfg.GitHubUsername,
		PageSize: cfg.PageSize,
		MaxPages: cfg.MaxPages,
		Logger:   logger,
	})

	return &app{
		db:            db,
		fetch:         fetch,
		board:         application.NewBoardService(prStore, filterStore, fetch),
		notifications: notificationStore,
	}, nil
}

func newSearchClient(cfg *config.Config) (driven.SearchClient, error) {
	switch cfg.Transport {
	case config.TransportAPI:
		client, err := githubadapter.NewAPIClient(githubadapter.APIOptions{
			Host:    cfg.GitHubHost,
			Timeout: cfg.QueryTimeout,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("query transport ready", "transport", "api", "host", cfg.GitHubHost)
		return client, nil
	default:
		slog.Info("query transport ready", "transport", "cli")
		return githubadapter.NewCLIClient(cfg.QueryTimeout), nil
	}
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
