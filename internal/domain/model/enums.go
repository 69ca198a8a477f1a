package model

// PRState is the lifecycle state of a pull request as seen by the watcher.
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateDraft  PRState = "draft"
	PRStateMerged PRState = "merged"
	PRStateClosed PRState = "closed"
)

// MergeableStatus represents whether a PR can be merged without conflicts.
type MergeableStatus string

const (
	MergeableMergeable   MergeableStatus = "mergeable"
	MergeableConflicting MergeableStatus = "conflicting"
	MergeableUnknown     MergeableStatus = "unknown"
)

// ReviewDecision is the platform's overall review verdict for a PR.
type ReviewDecision string

const (
	ReviewDecisionApproved         ReviewDecision = "approved"
	ReviewDecisionChangesRequested ReviewDecision = "changes_requested"
	ReviewDecisionReviewRequired   ReviewDecision = "review_required"
	ReviewDecisionNone             ReviewDecision = "none"
)

// CIStatus is the overall CI verdict for a PR's latest commit.
type CIStatus string

const (
	CIStatusSuccess CIStatus = "success"
	CIStatusFailure CIStatus = "failure"
	CIStatusPending CIStatus = "pending"
	CIStatusUnknown CIStatus = "unknown"
)

// CheckState is the classified outcome of a single check.
type CheckState string

const (
	CheckStatePassed  CheckState = "passed"
	CheckStateFailed  CheckState = "failed"
	CheckStatePending CheckState = "pending"
)

// ListKind names one of the two PR lists fetched each cycle.
type ListKind string

const (
	ListAuthored        ListKind = "authored"
	ListReviewRequested ListKind = "review_requested"
)
