package application

import (
	"fmt"
	"sort"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

// ChangeDetector diffs consecutive authored-PR snapshots and produces
// notification intents. It owns its snapshot; callers must not use one
// detector from multiple goroutines at once.
type ChangeDetector struct {
	snapshot model.ChangeSnapshot
	primed   bool
}

// NewChangeDetector returns a detector with no baseline. The first call to
// Detect primes it and emits nothing.
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{}
}

// Detect diffs current against the stored snapshot, then replaces the
// snapshot with current regardless of what the caller does with the intents.
func (d *ChangeDetector) Detect(current []model.PullRequest) []model.NotificationIntent {
	next := model.NewChangeSnapshot(current)

	var intents []model.NotificationIntent
	if d.primed {
		intents = DiffSnapshot(d.snapshot, current)
	}

	d.snapshot = next
	d.primed = true

	return intents
}

// Primed reports whether a baseline exists.
func (d *ChangeDetector) Primed() bool {
	return d.primed
}

// DiffSnapshot computes intents for the transition from prev to current.
// CI intents follow current's order; disappearance intents follow, ordered
// by identity. Newly appeared PRs never produce intents.
func DiffSnapshot(prev model.ChangeSnapshot, current []model.PullRequest) []model.NotificationIntent {
	intents := []model.NotificationIntent{}
	seen := make(map[model.Identity]struct{}, len(current))

	for _, pr := range current {
		seen[pr.ID] = struct{}{}

		before, ok := prev.CI[pr.ID]
		if !ok || before != model.CIStatusPending {
			continue
		}

		switch pr.CIStatus {
		case model.CIStatusFailure:
			intents = append(intents, ciFailedIntent(pr))
		case model.CIStatusSuccess:
			intents = append(intents, checksPassedIntent(pr))
		}
	}

	gone := make([]model.Identity, 0)
	for id := range prev.CI {
		if _, ok := seen[id]; !ok {
			gone = append(gone, id)
		}
	}
	sort.Slice(gone, func(i, j int) bool { return gone[i].Less(gone[j]) })

	for _, id := range gone {
		intents = append(intents, model.NotificationIntent{
			Kind:  model.IntentNoLongerOpen,
			PR:    id,
			Title: "PR No Longer Open",
			Body:  fmt.Sprintf("%s was merged or closed", id),
		})
	}

	return intents
}

func ciFailedIntent(pr model.PullRequest) model.NotificationIntent {
	body := fmt.Sprintf("%s: %s", pr.ID, pr.Title)
	if len(pr.FailedChecks) > 0 {
		body += fmt.Sprintf(" (%d failed, first: %s)", len(pr.FailedChecks), pr.FailedChecks[0].Name)
	}
	return model.NotificationIntent{
		Kind:  model.IntentCIFailed,
		PR:    pr.ID,
		Title: "CI Failed",
		Body:  body,
		URL:   pr.URL,
	}
}

func checksPassedIntent(pr model.PullRequest) model.NotificationIntent {
	return model.NotificationIntent{
		Kind:  model.IntentChecksPassed,
		PR:    pr.ID,
		Title: "All Checks Passed",
		Body:  fmt.Sprintf("%s: %s", pr.ID, pr.Title),
		URL:   pr.URL,
	}
}
