package driven

import (
	"context"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

// FilterStore defines the driven port for the check-name readiness policy.
// SetFilters returns model.ErrOverlappingCheckNames (wrapped) when the
// settings do not validate; nothing is written in that case.
type FilterStore interface {
	GetFilters(ctx context.Context) (model.FilterSettings, error)
	SetFilters(ctx context.Context, settings model.FilterSettings) error
}
