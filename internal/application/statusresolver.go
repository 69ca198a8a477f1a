package application

import "github.com/blakemcanally/pr-status-watcher/internal/domain/model"

// StatusInputs carries everything ResolveCIStatus needs for one PR.
type StatusInputs struct {
	DeclaredTotal int
	Passed        int
	Failed        int
	Pending       int
	RollupState   string // Server-computed aggregate; empty when absent.
}

// ResolveCIStatus combines a tally and the server rollup into one verdict.
// Precedence: no declared checks -> unknown; any failure; any pending; nothing
// informative survived tallying -> rollup; otherwise success.
func ResolveCIStatus(in StatusInputs) model.CIStatus {
	switch {
	case in.DeclaredTotal == 0:
		return model.CIStatusUnknown
	case in.Failed > 0:
		return model.CIStatusFailure
	case in.Pending > 0:
		return model.CIStatusPending
	case in.Passed == 0:
		return rollupStatus(in.RollupState)
	default:
		return model.CIStatusSuccess
	}
}

func rollupStatus(state string) model.CIStatus {
	switch state {
	case "SUCCESS":
		return model.CIStatusSuccess
	case "FAILURE", "ERROR":
		return model.CIStatusFailure
	case "PENDING":
		return model.CIStatusPending
	default:
		return model.CIStatusUnknown
	}
}

// StatusFromResults rebuilds the verdict from already-classified results, for
// example after ignored checks have been removed. There is no rollup fallback
// at this stage.
func StatusFromResults(results []model.CheckResult) model.CIStatus {
	if len(results) == 0 {
		return model.CIStatusUnknown
	}

	var hasPending bool
	for _, r := range results {
		switch r.Status {
		case model.CheckStateFailed:
			return model.CIStatusFailure
		case model.CheckStatePending:
			hasPending = true
		}
	}

	if hasPending {
		return model.CIStatusPending
	}
	return model.CIStatusSuccess
}
