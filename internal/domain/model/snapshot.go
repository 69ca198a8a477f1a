package model

// ChangeSnapshot is the change detector's memory of the previous cycle's
// authored PRs. It is replaced wholesale after every diff.
type ChangeSnapshot struct {
	CI map[Identity]CIStatus
}

// NewChangeSnapshot projects the given PRs into a snapshot.
func NewChangeSnapshot(prs []PullRequest) ChangeSnapshot {
	ci := make(map[Identity]CIStatus, len(prs))
	for _, pr := range prs {
		ci[pr.ID] = pr.CIStatus
	}
	return ChangeSnapshot{CI: ci}
}

// Contains reports whether the identity was present in the snapshot.
func (s ChangeSnapshot) Contains(id Identity) bool {
	_, ok := s.CI[id]
	return ok
}
