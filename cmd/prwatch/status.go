package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/blakemcanally/pr-status-watcher/internal/adapter/driving/report"
	"github.com/blakemcanally/pr-status-watcher/internal/application"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

// errNothingLoaded is returned when both lists failed and nothing was stored before.
var errNothingLoaded = errors.New("no list could be loaded")

func runStatus(ctx context.Context, v *viper.Viper, out io.Writer) error {
	cfg, logger, flush, err := loadConfig(v)
	if err != nil {
		return err
	}
	defer flush()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	result, ran := a.fetch.Refresh(ctx)
	if !ran {
		return errors.New("a fetch cycle is already running")
	}

	lists := make([]*application.BoardList, 0, 2)
	for _, kind := range []model.ListKind{model.ListAuthored, model.ListReviewRequested} {
		list, err := a.board.List(ctx, kind)
		if err != nil {
			return err
		}
		lists = append(lists, list)
	}

	if err := report.Render(out, report.Format(cfg.Output), report.Build(lists...)); err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	return statusError(result, lists)
}

// statusError fails the command only when neither list has anything to show.
func statusError(result *application.CycleResult, lists []*application.BoardList) error {
	for _, l := range lists {
		if l.Status.HasSucceeded {
			return nil
		}
	}
	return fmt.Errorf("%w: %w", errNothingLoaded, errors.Join(result.Authored.Err, result.ReviewRequested.Err))
}
