package model

import "time"

// BranchStatus describes the outcome history of one fetched list.
type BranchStatus struct {
	Kind          ListKind
	HasSucceeded  bool
	LastAttemptAt time.Time
	LastSuccessAt time.Time
	LastError     string // Empty after a successful attempt.
	CapReached    bool   // Pagination stopped at the page cap on the last success.
	Dropped       int    // Malformed records dropped on the last success.
}
