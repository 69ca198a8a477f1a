package application

import (
	"log/slog"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

// CheckTally is the classified breakdown of one PR's per-check listing.
type CheckTally struct {
	Passed       int
	Failed       int
	Pending      int
	CheckResults []model.CheckResult
	FailedChecks []model.CheckResult
}

// Counted returns the number of contexts that were classified (not skipped).
func (t CheckTally) Counted() int {
	return t.Passed + t.Failed + t.Pending
}

// TallyChecks classifies raw check contexts in order. A CheckRunContext with
// neither a status nor a conclusion is skipped entirely. declaredTotal is the
// server-reported count; when it exceeds len(contexts) a truncation warning is
// logged against logger.
func TallyChecks(contexts []model.CheckContext, declaredTotal int, logger *slog.Logger) CheckTally {
	var tally CheckTally

	for _, c := range contexts {
		var result model.CheckResult

		switch v := c.(type) {
		case model.StatusContext:
			result = model.CheckResult{
				Name:       v.Context,
				Status:     classifyStatusContext(v.State),
				DetailsURL: v.TargetURL,
			}
		case model.CheckRunContext:
			if v.Status == "" && v.Conclusion == "" {
				continue
			}
			result = model.CheckResult{
				Name:       v.Name,
				Status:     classifyCheckRun(v.Status, v.Conclusion),
				DetailsURL: v.DetailsURL,
			}
		default:
			continue
		}

		switch result.Status {
		case model.CheckStatePassed:
			tally.Passed++
		case model.CheckStateFailed:
			tally.Failed++
			tally.FailedChecks = append(tally.FailedChecks, result)
		default:
			tally.Pending++
		}
		tally.CheckResults = append(tally.CheckResults, result)
	}

	if declaredTotal > len(contexts) && logger != nil {
		logger.Warn("check listing truncated",
			"declared_total", declaredTotal,
			"listed", len(contexts),
		)
	}

	return tally
}

// classifyStatusContext maps a commit status state. Anything that is not a
// definite success or failure (PENDING, EXPECTED, unrecognized) is pending.
func classifyStatusContext(state string) model.CheckState {
	switch state {
	case "SUCCESS":
		return model.CheckStatePassed
	case "FAILURE", "ERROR":
		return model.CheckStateFailed
	default:
		return model.CheckStatePending
	}
}

// classifyCheckRun maps a check run. Only COMPLETED runs have a verdict; every
// conclusion other than SUCCESS, SKIPPED and NEUTRAL is a failure.
func classifyCheckRun(status, conclusion string) model.CheckState {
	if status != "COMPLETED" {
		return model.CheckStatePending
	}
	switch conclusion {
	case "SUCCESS", "SKIPPED", "NEUTRAL":
		return model.CheckStatePassed
	default:
		return model.CheckStateFailed
	}
}
