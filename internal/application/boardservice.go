package application

import (
	"context"
	"fmt"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

// BranchStatusProvider reports the latest outcome of each fetched list.
type BranchStatusProvider interface {
	BranchStatus(kind model.ListKind) model.BranchStatus
}

// BoardEntry is a PR paired with its readiness under the current filters.
type BoardEntry struct {
	PR    model.PullRequest
	Ready bool
}

// BoardList is one list as presented to the display layer.
type BoardList struct {
	Kind    model.ListKind
	Entries []BoardEntry
	Status  model.BranchStatus
}

// BoardService assembles the display view of the stored lists. It depends
// only on port interfaces.
type BoardService struct {
	prStore     driven.PRListStore
	filterStore driven.FilterStore
	statuses    BranchStatusProvider
}

// NewBoardService creates a new BoardService with the required dependencies.
func NewBoardService(prStore driven.PRListStore, filterStore driven.FilterStore, statuses BranchStatusProvider) *BoardService {
	return &BoardService{
		prStore:     prStore,
		filterStore: filterStore,
		statuses:    statuses,
	}
}

// List returns the stored list for kind with a readiness flag per PR.
func (s *BoardService) List(ctx context.Context, kind model.ListKind) (*BoardList, error) {
	filters, err := s.Filters(ctx)
	if err != nil {
		return nil, err
	}

	prs, err := s.prStore.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}

	entries := make([]BoardEntry, 0, len(prs))
	for _, pr := range prs {
		entries = append(entries, BoardEntry{PR: pr, Ready: IsReady(pr, filters)})
	}

	list := &BoardList{Kind: kind, Entries: entries}
	if s.statuses != nil {
		list.Status = s.statuses.BranchStatus(kind)
	}
	return list, nil
}

// Filters returns the stored check filters, validated.
func (s *BoardService) Filters(ctx context.Context) (model.FilterSettings, error) {
	filters, err := s.filterStore.GetFilters(ctx)
	if err != nil {
		return model.FilterSettings{}, fmt.Errorf("get filters: %w", err)
	}
	if err := filters.Validate(); err != nil {
		return model.FilterSettings{}, err
	}
	return filters, nil
}

// SetFilters validates and stores new check filters.
func (s *BoardService) SetFilters(ctx context.Context, filters model.FilterSettings) error {
	if err := filters.Validate(); err != nil {
		return err
	}
	if err := s.filterStore.SetFilters(ctx, filters); err != nil {
		return fmt.Errorf("set filters: %w", err)
	}
	return nil
}
