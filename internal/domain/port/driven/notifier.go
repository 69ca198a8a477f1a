package driven

import (
	"context"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

// Notifier delivers notification intents to the user.
type Notifier interface {
	Notify(ctx context.Context, intents []model.NotificationIntent) error
}

// NotificationStore keeps a history of delivered intents.
type NotificationStore interface {
	Record(ctx context.Context, intents []model.NotificationIntent) error
	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.NotificationRecord, error)
}
