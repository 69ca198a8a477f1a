// Package notify implements the Notifier port.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.Notifier = (*LogNotifier)(nil)
	_ driven.Notifier = (*HistoryNotifier)(nil)
	_ driven.Notifier = Multi(nil)
)

// LogNotifier writes each intent as a structured log record.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs every intent in order.
func (n *LogNotifier) Notify(ctx context.Context, intents []model.NotificationIntent) error {
	for _, in := range intents {
		n.logger.InfoContext(ctx, in.Title,
			"kind", string(in.Kind),
			"pr", in.PR.String(),
			"body", in.Body,
			"url", in.URL,
		)
	}
	return nil
}

// HistoryNotifier records intents in a NotificationStore.
type HistoryNotifier struct {
	store driven.NotificationStore
}

// NewHistoryNotifier creates a HistoryNotifier backed by store.
func NewHistoryNotifier(store driven.NotificationStore) *HistoryNotifier {
	return &HistoryNotifier{store: store}
}

// Notify appends the intents to the history.
func (n *HistoryNotifier) Notify(ctx context.Context, intents []model.NotificationIntent) error {
	if err := n.store.Record(ctx, intents); err != nil {
		return fmt.Errorf("record notifications: %w", err)
	}
	return nil
}

// Multi delivers to every notifier, even after one fails, and joins the errors.
type Multi []driven.Notifier

// Notify fans intents out to all notifiers in order.
func (m Multi) Notify(ctx context.Context, intents []model.NotificationIntent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, intents); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
