package application

import "github.com/blakemcanally/pr-status-watcher/internal/domain/model"

// IsReady reports whether a PR is actionable for review under the given policy.
// filters must already be validated as disjoint. The function has no side
// effects and may be called repeatedly.
//
// A required check that has not reported at all does not block readiness.
func IsReady(pr model.PullRequest, filters model.FilterSettings) bool {
	if pr.State == model.PRStateDraft {
		return false
	}
	if pr.Mergeable == model.MergeableConflicting {
		return false
	}

	ignored := filters.IgnoredSet()
	effective := make([]model.CheckResult, 0, len(pr.CheckResults))
	for _, r := range pr.CheckResults {
		if _, skip := ignored[r.Name]; !skip {
			effective = append(effective, r)
		}
	}

	if len(filters.RequiredChecks) == 0 {
		status := StatusFromResults(effective)
		return status != model.CIStatusFailure && status != model.CIStatusPending
	}

	byName := make(map[string]model.CheckResult, len(effective))
	for _, r := range effective {
		// First occurrence wins when a name is reported twice.
		if _, seen := byName[r.Name]; !seen {
			byName[r.Name] = r
		}
	}

	for _, name := range filters.RequiredChecks {
		if _, skip := ignored[name]; skip {
			continue
		}
		r, reported := byName[name]
		if !reported {
			continue
		}
		if r.Status != model.CheckStatePassed {
			return false
		}
	}

	return true
}
