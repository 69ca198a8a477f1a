package application_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blakemcanally/pr-status-watcher/internal/application"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

// --- TallyChecks tests (table-driven) ---

func TestTallyChecks(t *testing.T) {
	tests := []struct {
		name        string
		contexts    []model.CheckContext
		wantPassed  int
		wantFailed  int
		wantPending int
		wantFailed1 string
	}{
		{
			name:       "check runs success and failure",
			contexts:   []model.CheckContext{completedRun("build", "SUCCESS"), completedRun("test", "FAILURE")},
			wantPassed: 1, wantFailed: 1, wantFailed1: "test",
		},
		{
			name: "skipped and neutral pass",
			contexts: []model.CheckContext{
				completedRun("docs", "SKIPPED"),
				completedRun("bench", "NEUTRAL"),
			},
			wantPassed: 2,
		},
		{
			name: "other completed conclusions fail",
			contexts: []model.CheckContext{
				completedRun("a", "CANCELLED"),
				completedRun("b", "TIMED_OUT"),
				completedRun("c", "ACTION_REQUIRED"),
				completedRun("d", "STALE"),
			},
			wantFailed: 4, wantFailed1: "a",
		},
		{
			name: "incomplete check runs are pending",
			contexts: []model.CheckContext{
				model.CheckRunContext{Name: "build", Status: "IN_PROGRESS"},
				model.CheckRunContext{Name: "test", Status: "QUEUED", Conclusion: "SUCCESS"},
			},
			wantPending: 2,
		},
		{
			name: "empty check run is skipped",
			contexts: []model.CheckContext{
				model.CheckRunContext{Name: "ghost"},
				completedRun("build", "SUCCESS"),
			},
			wantPassed: 1,
		},
		{
			name: "status contexts",
			contexts: []model.CheckContext{
				model.StatusContext{Context: "ci/a", State: "SUCCESS"},
				model.StatusContext{Context: "ci/b", State: "ERROR"},
				model.StatusContext{Context: "ci/c", State: "FAILURE"},
				model.StatusContext{Context: "ci/d", State: "EXPECTED"},
				model.StatusContext{Context: "ci/e", State: "WHATEVER"},
			},
			wantPassed: 1, wantFailed: 2, wantPending: 2, wantFailed1: "ci/b",
		},
		{
			name:     "no contexts",
			contexts: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := application.TallyChecks(tt.contexts, len(tt.contexts), nil)

			assert.Equal(t, tt.wantPassed, tally.Passed)
			assert.Equal(t, tt.wantFailed, tally.Failed)
			assert.Equal(t, tt.wantPending, tally.Pending)
			assert.Len(t, tally.FailedChecks, tt.wantFailed)
			assert.Len(t, tally.CheckResults, tally.Counted())
			if tt.wantFailed1 != "" {
				require.NotEmpty(t, tally.FailedChecks)
				assert.Equal(t, tt.wantFailed1, tally.FailedChecks[0].Name)
			}
		})
	}
}

func TestTallyChecks_SumEqualsCountedElements(t *testing.T) {
	contexts := []model.CheckContext{
		model.CheckRunContext{},
		completedRun("a", "SUCCESS"),
		model.StatusContext{Context: "b", State: "PENDING"},
		model.CheckRunContext{Name: "c"},
		completedRun("d", "FAILURE"),
		model.CheckRunContext{Name: "e", Status: "WAITING"},
	}

	tally := application.TallyChecks(contexts, len(contexts), nil)

	assert.Equal(t, 4, tally.Passed+tally.Failed+tally.Pending)
	require.Len(t, tally.CheckResults, 4)
	names := make([]string, 0, len(tally.CheckResults))
	for _, r := range tally.CheckResults {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"a", "b", "d", "e"}, names)
}

func TestTallyChecks_PreservesDetailsURL(t *testing.T) {
	tally := application.TallyChecks([]model.CheckContext{
		model.CheckRunContext{Name: "build", Status: "COMPLETED", Conclusion: "SUCCESS", DetailsURL: "https://ci/1"},
		model.StatusContext{Context: "deploy", State: "SUCCESS", TargetURL: "https://ci/2"},
	}, 2, nil)

	require.Len(t, tally.CheckResults, 2)
	assert.Equal(t, "https://ci/1", tally.CheckResults[0].DetailsURL)
	assert.Equal(t, "https://ci/2", tally.CheckResults[1].DetailsURL)
}

func TestTallyChecks_TruncationWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	tally := application.TallyChecks([]model.CheckContext{completedRun("a", "SUCCESS")}, 150, logger)

	assert.Equal(t, 1, tally.Passed)
	assert.Contains(t, buf.String(), "check listing truncated")
	assert.Contains(t, buf.String(), "declared_total=150")
}

func TestTallyChecks_NoWarningWhenComplete(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	application.TallyChecks([]model.CheckContext{completedRun("a", "SUCCESS")}, 1, logger)

	assert.Empty(t, buf.String())
}
