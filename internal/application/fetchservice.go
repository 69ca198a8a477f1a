// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

// FetchOutcome is the result of one branch of a fetch cycle.
type FetchOutcome struct {
	Kind       model.ListKind
	PRs        []model.PullRequest
	Err        error
	CapReached bool
	Dropped    int
}

// CycleResult is everything one fetch cycle produced.
type CycleResult struct {
	Authored        FetchOutcome
	ReviewRequested FetchOutcome
	Intents         []model.NotificationIntent
}

// FetchService runs fetch cycles: two paginated searches in parallel, check
// classification, persistence of successful branches, and change detection on
// the authored list. At most one cycle runs at a time; a trigger while a cycle
// is in flight is a no-op.
type FetchService struct {
	client   driven.SearchClient
	store    driven.PRListStore
	notifier driven.Notifier // May be nil.
	pageSize int
	maxPages int
	logger   *slog.Logger

	// Fields below are touched only by the cycle holding the running flag.
	username string
	detector *ChangeDetector

	running atomic.Bool

	statusMu sync.RWMutex
	statuses map[model.ListKind]model.BranchStatus
}

// FetchOptions configures a FetchService.
type FetchOptions struct {
	Username string // Resolved through the client on first cycle when empty.
	PageSize int
	MaxPages int
	Logger   *slog.Logger
}

// NewFetchService creates a new FetchService with all required dependencies.
func NewFetchService(
	client driven.SearchClient,
	store driven.PRListStore,
	notifier driven.Notifier,
	opts FetchOptions,
) *FetchService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchService{
		client:   client,
		store:    store,
		notifier: notifier,
		pageSize: opts.PageSize,
		maxPages: opts.MaxPages,
		logger:   logger,
		username: opts.Username,
		detector: NewChangeDetector(),
		statuses: map[model.ListKind]model.BranchStatus{
			model.ListAuthored:        {Kind: model.ListAuthored},
			model.ListReviewRequested: {Kind: model.ListReviewRequested},
		},
	}
}

// Refresh runs one cycle synchronously. It returns (nil, false) without doing
// anything when another cycle is already in flight.
func (s *FetchService) Refresh(ctx context.Context) (*CycleResult, bool) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("fetch already in flight, trigger ignored")
		return nil, false
	}
	defer s.running.Store(false)

	return s.runCycle(ctx), true
}

// TriggerAsync starts a cycle in the background and returns true, or returns
// false when a cycle is already in flight.
func (s *FetchService) TriggerAsync(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("fetch already in flight, trigger ignored")
		return false
	}

	go func() {
		defer s.running.Store(false)
		s.runCycle(ctx)
	}()

	return true
}

// InFlight reports whether a cycle is currently running.
func (s *FetchService) InFlight() bool {
	return s.running.Load()
}

// BranchStatus returns the latest status of the given list.
func (s *FetchService) BranchStatus(kind model.ListKind) model.BranchStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.statuses[kind]
}

func (s *FetchService) runCycle(ctx context.Context) *CycleResult {
	start := time.Now()
	result := &CycleResult{
		Authored:        FetchOutcome{Kind: model.ListAuthored},
		ReviewRequested: FetchOutcome{Kind: model.ListReviewRequested},
	}

	user, err := s.resolveUsername(ctx)
	if err != nil {
		result.Authored.Err = err
		result.ReviewRequested.Err = err
	} else {
		// Both searches start before either is awaited.
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			result.Authored = s.fetchList(ctx, model.ListAuthored, AuthoredFilter(user))
		}()
		go func() {
			defer wg.Done()
			result.ReviewRequested = s.fetchList(ctx, model.ListReviewRequested, ReviewRequestedFilter(user))
		}()
		wg.Wait()
	}

	s.apply(ctx, result.Authored, start)
	s.apply(ctx, result.ReviewRequested, start)

	if result.Authored.Err == nil {
		result.Intents = s.detector.Detect(result.Authored.PRs)
		s.deliver(ctx, result.Intents)
	} else {
		s.logger.Info("change detection skipped, authored fetch failed")
	}

	s.logger.Info("fetch cycle complete",
		"authored", len(result.Authored.PRs),
		"review_requested", len(result.ReviewRequested.PRs),
		"authored_error", errString(result.Authored.Err),
		"review_requested_error", errString(result.ReviewRequested.Err),
		"intents", len(result.Intents),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return result
}

func (s *FetchService) resolveUsername(ctx context.Context) (string, error) {
	if s.username != "" {
		return s.username, nil
	}

	login, err := s.client.CurrentLogin(ctx)
	if err != nil {
		return "", err
	}
	if login == "" {
		return "", errors.New("authenticated login is empty")
	}

	s.username = login
	s.logger.Info("resolved authenticated login", "username", login)
	return login, nil
}

// fetchList paginates one search and classifies every node.
func (s *FetchService) fetchList(ctx context.Context, kind model.ListKind, filter string) FetchOutcome {
	pager := NewQueryPager(s.client, s.pageSize, s.maxPages, s.logger.With("branch", string(kind)))

	page, err := pager.Collect(ctx, filter)
	if err != nil {
		return FetchOutcome{Kind: kind, Err: err}
	}

	prs := make([]model.PullRequest, 0, len(page.Nodes))
	seen := make(map[model.Identity]struct{}, len(page.Nodes))
	for _, node := range page.Nodes {
		pr := BuildPullRequest(node, s.logger)
		// Results can shift between pages; the first occurrence keeps its position.
		if _, dup := seen[pr.ID]; dup {
			s.logger.Debug("duplicate search result skipped", "branch", string(kind), "pr", pr.ID.String())
			continue
		}
		seen[pr.ID] = struct{}{}
		prs = append(prs, pr)
	}

	return FetchOutcome{
		Kind:       kind,
		PRs:        prs,
		CapReached: page.CapReached,
		Dropped:    page.Dropped,
	}
}

// apply records a branch outcome. Failed branches leave stored data untouched.
func (s *FetchService) apply(ctx context.Context, out FetchOutcome, attemptAt time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	status := s.statuses[out.Kind]
	status.LastAttemptAt = attemptAt

	if out.Err != nil {
		status.LastError = out.Err.Error()
		s.statuses[out.Kind] = status
		s.logger.Error("branch fetch failed", "branch", string(out.Kind), "error", out.Err)
		return
	}

	if err := s.store.ReplaceList(ctx, out.Kind, out.PRs); err != nil {
		status.LastError = err.Error()
		s.statuses[out.Kind] = status
		s.logger.Error("persist branch failed", "branch", string(out.Kind), "error", err)
		return
	}

	status.HasSucceeded = true
	status.LastSuccessAt = attemptAt
	status.LastError = ""
	status.CapReached = out.CapReached
	status.Dropped = out.Dropped
	s.statuses[out.Kind] = status
}

// deliver hands intents to the notifier. Delivery failure does not affect the
// already-replaced snapshot.
func (s *FetchService) deliver(ctx context.Context, intents []model.NotificationIntent) {
	if len(intents) == 0 || s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, intents); err != nil {
		s.logger.Error("notification delivery failed", "intents", len(intents), "error", err)
	}
}

// BuildPullRequest classifies a raw search node into a PullRequest.
func BuildPullRequest(node model.PRNode, logger *slog.Logger) model.PullRequest {
	var tallyLogger *slog.Logger
	if logger != nil {
		tallyLogger = logger.With("pr", node.ID.String())
	}
	tally := TallyChecks(node.Checks, node.ChecksDeclaredTotal, tallyLogger)

	status := ResolveCIStatus(StatusInputs{
		DeclaredTotal: node.ChecksDeclaredTotal,
		Passed:        tally.Passed,
		Failed:        tally.Failed,
		Pending:       tally.Pending,
		RollupState:   node.RollupState,
	})

	results := tally.CheckResults
	if results == nil {
		results = []model.CheckResult{}
	}
	failed := tally.FailedChecks
	if failed == nil {
		failed = []model.CheckResult{}
	}

	return model.PullRequest{
		ID:             node.ID,
		Title:          node.Title,
		URL:            node.URL,
		Author:         node.Author,
		HeadRef:        node.HeadRef,
		State:          node.State,
		IsInMergeQueue: node.IsInMergeQueue,
		QueuePosition:  node.QueuePosition,
		Mergeable:      node.Mergeable,
		ReviewDecision: node.ReviewDecision,
		ApprovalCount:  node.ApprovalCount,
		Additions:      node.Additions,
		Deletions:      node.Deletions,
		CreatedAt:      node.CreatedAt,
		UpdatedAt:      node.UpdatedAt,
		CIStatus:       status,
		ChecksTotal:    node.ChecksDeclaredTotal,
		ChecksPassed:   tally.Passed,
		ChecksFailed:   tally.Failed,
		ChecksPending:  tally.Pending,
		CheckResults:   results,
		FailedChecks:   failed,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
