package model

import "time"

// CheckContext is one raw entry of a PR's heterogeneous per-check listing.
// It is either a StatusContext (commit status API) or a CheckRunContext
// (checks API). The set of implementations is closed.
type CheckContext interface {
	isCheckContext()
}

// StatusContext is a commit status reported through the status API.
type StatusContext struct {
	Context   string
	State     string // SUCCESS, FAILURE, ERROR, PENDING, EXPECTED.
	TargetURL string
}

// CheckRunContext is a check run reported through the checks API.
type CheckRunContext struct {
	Name       string
	Status     string // QUEUED, IN_PROGRESS, COMPLETED, WAITING, REQUESTED, PENDING.
	Conclusion string // SUCCESS, FAILURE, NEUTRAL, SKIPPED, CANCELLED, TIMED_OUT, ACTION_REQUIRED, STALE.
	DetailsURL string
}

func (StatusContext) isCheckContext()   {}
func (CheckRunContext) isCheckContext() {}

// PRNode is a PR record decoded from one search page, before its checks have
// been classified. It exists only during a fetch cycle.
type PRNode struct {
	ID             Identity
	Title          string
	URL            string
	Author         string
	HeadRef        string
	State          PRState
	IsInMergeQueue bool
	QueuePosition  *int
	Mergeable      MergeableStatus
	ReviewDecision ReviewDecision
	ApprovalCount  int
	Additions      int
	Deletions      int
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Checks              []CheckContext
	ChecksDeclaredTotal int
	RollupState         string // Empty when the platform computed no rollup.
}

// SearchPage is one page of search results.
type SearchPage struct {
	Nodes       []PRNode
	Dropped     int // Records discarded for missing required fields.
	HasNextPage bool
	EndCursor   string
	IssueCount  int
}
