package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blakemcanally/pr-status-watcher/internal/application"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

func snapshotOf(prs ...model.PullRequest) model.ChangeSnapshot {
	return model.NewChangeSnapshot(prs)
}

// --- DiffSnapshot tests ---

func TestDiffSnapshot_PendingToFailure(t *testing.T) {
	a := pr(1, model.CIStatusFailure)
	a.FailedChecks = []model.CheckResult{failed("test"), failed("lint")}

	intents := application.DiffSnapshot(snapshotOf(pr(1, model.CIStatusPending)), []model.PullRequest{a})

	require.Len(t, intents, 1)
	assert.Equal(t, model.IntentCIFailed, intents[0].Kind)
	assert.Equal(t, a.ID, intents[0].PR)
	assert.Equal(t, "CI Failed", intents[0].Title)
	assert.Equal(t, "acme/api#1: Change (2 failed, first: test)", intents[0].Body)
	assert.Equal(t, a.URL, intents[0].URL)
}

func TestDiffSnapshot_PassedAndDisappeared(t *testing.T) {
	prev := snapshotOf(pr(1, model.CIStatusPending), pr(2, model.CIStatusSuccess))

	intents := application.DiffSnapshot(prev, []model.PullRequest{pr(1, model.CIStatusSuccess)})

	require.Len(t, intents, 2)
	assert.Equal(t, model.IntentChecksPassed, intents[0].Kind)
	assert.Equal(t, 1, intents[0].PR.Number)
	assert.Equal(t, "All Checks Passed", intents[0].Title)

	assert.Equal(t, model.IntentNoLongerOpen, intents[1].Kind)
	assert.Equal(t, 2, intents[1].PR.Number)
	assert.Equal(t, "acme/api#2 was merged or closed", intents[1].Body)
	assert.Empty(t, intents[1].URL)
}

func TestDiffSnapshot_OtherTransitionsAreSilent(t *testing.T) {
	tests := []struct {
		name   string
		before model.CIStatus
		after  model.CIStatus
	}{
		{"failure to success", model.CIStatusFailure, model.CIStatusSuccess},
		{"success to failure", model.CIStatusSuccess, model.CIStatusFailure},
		{"success to pending", model.CIStatusSuccess, model.CIStatusPending},
		{"pending unchanged", model.CIStatusPending, model.CIStatusPending},
		{"pending to unknown", model.CIStatusPending, model.CIStatusUnknown},
		{"unknown to success", model.CIStatusUnknown, model.CIStatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intents := application.DiffSnapshot(snapshotOf(pr(1, tt.before)), []model.PullRequest{pr(1, tt.after)})
			assert.Empty(t, intents)
		})
	}
}

func TestDiffSnapshot_NewPRsAreSilent(t *testing.T) {
	intents := application.DiffSnapshot(snapshotOf(), []model.PullRequest{pr(1, model.CIStatusFailure)})

	assert.NotNil(t, intents)
	assert.Empty(t, intents)
}

func TestDiffSnapshot_DisappearedOrderedByIdentity(t *testing.T) {
	prev := snapshotOf(pr(30, model.CIStatusSuccess), pr(4, model.CIStatusSuccess), pr(12, model.CIStatusPending))

	intents := application.DiffSnapshot(prev, nil)

	require.Len(t, intents, 3)
	assert.Equal(t, 4, intents[0].PR.Number)
	assert.Equal(t, 12, intents[1].PR.Number)
	assert.Equal(t, 30, intents[2].PR.Number)
}

// --- ChangeDetector tests ---

func TestChangeDetector_FirstLoadEmitsNothing(t *testing.T) {
	d := application.NewChangeDetector()
	assert.False(t, d.Primed())

	intents := d.Detect([]model.PullRequest{pr(1, model.CIStatusFailure)})

	assert.Empty(t, intents)
	assert.True(t, d.Primed())
}

func TestChangeDetector_SnapshotReplacedEachCycle(t *testing.T) {
	d := application.NewChangeDetector()
	d.Detect([]model.PullRequest{pr(1, model.CIStatusPending)})

	intents := d.Detect([]model.PullRequest{pr(1, model.CIStatusFailure)})
	require.Len(t, intents, 1)

	// The failure is now the baseline; repeating it is not a transition.
	assert.Empty(t, d.Detect([]model.PullRequest{pr(1, model.CIStatusFailure)}))

	// Emptying the list reports the PR once, then never again.
	require.Len(t, d.Detect(nil), 1)
	assert.Empty(t, d.Detect(nil))
}
