package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

func makePR(repo string, number int, status model.CIStatus) model.PullRequest {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	return model.PullRequest{
		ID:             model.Identity{Owner: "octocat", Repo: repo, Number: number},
		Title:          "Update README",
		URL:            "https://github.com/octocat/" + repo + "/pull/1",
		Author:         "testuser",
		HeadRef:        "feature-branch",
		State:          model.PRStateOpen,
		Mergeable:      model.MergeableMergeable,
		ReviewDecision: model.ReviewDecisionReviewRequired,
		CreatedAt:      now.Add(-48 * time.Hour),
		UpdatedAt:      now,
		CIStatus:       status,
		CheckResults:   []model.CheckResult{},
		FailedChecks:   []model.CheckResult{},
	}
}

func TestPRListRepo_ReplaceAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRListRepo(db)
	ctx := context.Background()

	pos := 3
	first := makePR("hello-world", 2, model.CIStatusFailure)
	first.IsInMergeQueue = true
	first.QueuePosition = &pos
	first.ApprovalCount = 2
	first.Additions = 10
	first.Deletions = 4
	first.ChecksTotal = 3
	first.ChecksPassed = 1
	first.ChecksFailed = 1
	first.ChecksPending = 1
	first.CheckResults = []model.CheckResult{
		{Name: "build", Status: model.CheckStatePassed, DetailsURL: "https://ci/1"},
		{Name: "test", Status: model.CheckStateFailed},
		{Name: "lint", Status: model.CheckStatePending},
	}
	first.FailedChecks = []model.CheckResult{{Name: "test", Status: model.CheckStateFailed}}

	second := makePR("hello-world", 1, model.CIStatusUnknown)

	require.NoError(t, repo.ReplaceList(ctx, model.ListAuthored, []model.PullRequest{first, second}))

	got, err := repo.List(ctx, model.ListAuthored)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, first, got[0])
	assert.Equal(t, second, got[1])
}

func TestPRListRepo_ReplaceDropsPrevious(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRListRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceList(ctx, model.ListAuthored, []model.PullRequest{
		makePR("a", 1, model.CIStatusPending),
		makePR("a", 2, model.CIStatusPending),
	}))
	require.NoError(t, repo.ReplaceList(ctx, model.ListAuthored, []model.PullRequest{
		makePR("a", 3, model.CIStatusSuccess),
	}))

	got, err := repo.List(ctx, model.ListAuthored)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID.Number)
}

func TestPRListRepo_ListsAreIndependent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRListRepo(db)
	ctx := context.Background()

	shared := makePR("a", 1, model.CIStatusPending)
	require.NoError(t, repo.ReplaceList(ctx, model.ListAuthored, []model.PullRequest{shared}))
	require.NoError(t, repo.ReplaceList(ctx, model.ListReviewRequested, []model.PullRequest{shared, makePR("b", 9, model.CIStatusSuccess)}))

	require.NoError(t, repo.ReplaceList(ctx, model.ListAuthored, nil))

	authored, err := repo.List(ctx, model.ListAuthored)
	require.NoError(t, err)
	assert.Empty(t, authored)

	review, err := repo.List(ctx, model.ListReviewRequested)
	require.NoError(t, err)
	assert.Len(t, review, 2)
}

func TestPRListRepo_ListNeverStored(t *testing.T) {
	db := setupTestDB(t)

	got, err := NewPRListRepo(db).List(context.Background(), model.ListReviewRequested)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPRListRepo_DuplicateInOneListRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPRListRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceList(ctx, model.ListAuthored, []model.PullRequest{makePR("a", 1, model.CIStatusSuccess)}))

	dup := makePR("a", 2, model.CIStatusPending)
	err := repo.ReplaceList(ctx, model.ListAuthored, []model.PullRequest{dup, dup})
	require.Error(t, err)

	got, err := repo.List(ctx, model.ListAuthored)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID.Number)
}
