package driven

import (
	"context"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

// PRListStore defines the driven port for the last successfully fetched PR lists.
// Uses full replacement: a list is swapped atomically and only on success.
type PRListStore interface {
	// ReplaceList deletes the stored list of the given kind and inserts prs in
	// one transaction, preserving their order.
	ReplaceList(ctx context.Context, kind model.ListKind, prs []model.PullRequest) error
	// List returns the stored list of the given kind in fetch order.
	List(ctx context.Context, kind model.ListKind) ([]model.PullRequest, error)
}
