package model

import (
	"fmt"
	"time"
)

// Identity uniquely names a pull request across fetch cycles.
type Identity struct {
	Owner  string
	Repo   string
	Number int
}

// String returns the identity in "owner/repo#number" form.
func (id Identity) String() string {
	return fmt.Sprintf("%s/%s#%d", id.Owner, id.Repo, id.Number)
}

// RepoFullName returns "owner/repo".
func (id Identity) RepoFullName() string {
	return id.Owner + "/" + id.Repo
}

// Less orders identities by owner, repo, then number.
func (id Identity) Less(other Identity) bool {
	if id.Owner != other.Owner {
		return id.Owner < other.Owner
	}
	if id.Repo != other.Repo {
		return id.Repo < other.Repo
	}
	return id.Number < other.Number
}

// CheckResult is one classified check on a PR's latest commit.
type CheckResult struct {
	Name       string
	Status     CheckState
	DetailsURL string // Empty when the platform did not report one.
}

// PullRequest is one observed state of a PR at one fetch moment. It is built
// fresh every cycle and never mutated afterwards.
type PullRequest struct {
	ID             Identity
	Title          string
	URL            string
	Author         string
	HeadRef        string
	State          PRState
	IsInMergeQueue bool
	QueuePosition  *int // Nil unless the PR is queued and the position is known.
	Mergeable      MergeableStatus
	ReviewDecision ReviewDecision
	ApprovalCount  int
	Additions      int
	Deletions      int
	CreatedAt      time.Time
	UpdatedAt      time.Time

	CIStatus      CIStatus
	ChecksTotal   int // Server-declared count; may exceed len(CheckResults).
	ChecksPassed  int
	ChecksFailed  int
	ChecksPending int
	CheckResults  []CheckResult
	FailedChecks  []CheckResult
}

// ChecksTruncated reports whether the per-check listing was cut short upstream.
func (pr PullRequest) ChecksTruncated() bool {
	return pr.ChecksTotal > len(pr.CheckResults)
}

// DaysSinceUpdated returns the number of whole days since the PR was last updated.
func (pr PullRequest) DaysSinceUpdated() int {
	return int(time.Since(pr.UpdatedAt).Hours() / 24)
}
