package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PRListStore = (*PRListRepo)(nil)

// PRListRepo is the SQLite implementation of the PRListStore port interface.
type PRListRepo struct {
	db *DB
}

// NewPRListRepo creates a new PRListRepo backed by the given DB.
func NewPRListRepo(db *DB) *PRListRepo {
	return &PRListRepo{db: db}
}

type storedCheckResult struct {
	Name       string           `json:"name"`
	Status     model.CheckState `json:"status"`
	DetailsURL string           `json:"details_url,omitempty"`
}

// ReplaceList atomically replaces the stored list for kind. Order is preserved.
func (r *PRListRepo) ReplaceList(ctx context.Context, kind model.ListKind, prs []model.PullRequest) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	const deleteQuery = `DELETE FROM pull_requests WHERE list_kind = ?`
	if _, err := tx.ExecContext(ctx, deleteQuery, string(kind)); err != nil {
		return fmt.Errorf("delete %s list: %w", kind, err)
	}

	const insertQuery = `
		INSERT INTO pull_requests (
			list_kind, position, owner, repo, number, title, url, author, head_ref,
			state, is_in_merge_queue, queue_position, mergeable, review_decision,
			approval_count, additions, deletions, created_at, updated_at,
			ci_status, checks_total, checks_passed, checks_failed, checks_pending, check_results
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i, pr := range prs {
		results := make([]storedCheckResult, 0, len(pr.CheckResults))
		for _, cr := range pr.CheckResults {
			results = append(results, storedCheckResult{Name: cr.Name, Status: cr.Status, DetailsURL: cr.DetailsURL})
		}
		resultsJSON, err := json.Marshal(results)
		if err != nil {
			return fmt.Errorf("marshal check results for %s: %w", pr.ID, err)
		}

		var queuePos any
		if pr.QueuePosition != nil {
			queuePos = *pr.QueuePosition
		}

		if _, err := tx.ExecContext(ctx, insertQuery,
			string(kind), i, pr.ID.Owner, pr.ID.Repo, pr.ID.Number, pr.Title, pr.URL, pr.Author, pr.HeadRef,
			string(pr.State), boolToInt(pr.IsInMergeQueue), queuePos, string(pr.Mergeable), string(pr.ReviewDecision),
			pr.ApprovalCount, pr.Additions, pr.Deletions, formatTime(pr.CreatedAt), formatTime(pr.UpdatedAt),
			string(pr.CIStatus), pr.ChecksTotal, pr.ChecksPassed, pr.ChecksFailed, pr.ChecksPending, string(resultsJSON),
		); err != nil {
			return fmt.Errorf("insert %s into %s list: %w", pr.ID, kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s list: %w", kind, err)
	}

	return nil
}

// List returns the stored list for kind in fetch order. A list that was never
// stored is empty.
func (r *PRListRepo) List(ctx context.Context, kind model.ListKind) ([]model.PullRequest, error) {
	const query = `
		SELECT owner, repo, number, title, url, author, head_ref,
			state, is_in_merge_queue, queue_position, mergeable, review_decision,
			approval_count, additions, deletions, created_at, updated_at,
			ci_status, checks_total, checks_passed, checks_failed, checks_pending, check_results
		FROM pull_requests
		WHERE list_kind = ?
		ORDER BY position
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query %s list: %w", kind, err)
	}
	defer rows.Close()

	prs := []model.PullRequest{}
	for rows.Next() {
		pr, err := scanPR(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pull request: %w", err)
		}
		prs = append(prs, *pr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s list: %w", kind, err)
	}

	return prs, nil
}

func scanPR(s scanner) (*model.PullRequest, error) {
	var pr model.PullRequest
	var state, mergeable, reviewDecision, ciStatus string
	var inQueue int
	var queuePos sql.NullInt64
	var createdAt, updatedAt, resultsJSON string

	err := s.Scan(
		&pr.ID.Owner, &pr.ID.Repo, &pr.ID.Number, &pr.Title, &pr.URL, &pr.Author, &pr.HeadRef,
		&state, &inQueue, &queuePos, &mergeable, &reviewDecision,
		&pr.ApprovalCount, &pr.Additions, &pr.Deletions, &createdAt, &updatedAt,
		&ciStatus, &pr.ChecksTotal, &pr.ChecksPassed, &pr.ChecksFailed, &pr.ChecksPending, &resultsJSON,
	)
	if err != nil {
		return nil, err
	}

	pr.State = model.PRState(state)
	pr.IsInMergeQueue = inQueue != 0
	pr.Mergeable = model.MergeableStatus(mergeable)
	pr.ReviewDecision = model.ReviewDecision(reviewDecision)
	pr.CIStatus = model.CIStatus(ciStatus)

	if queuePos.Valid {
		pos := int(queuePos.Int64)
		pr.QueuePosition = &pos
	}

	pr.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	pr.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	var results []storedCheckResult
	if err := json.Unmarshal([]byte(resultsJSON), &results); err != nil {
		return nil, fmt.Errorf("unmarshal check_results: %w", err)
	}

	pr.CheckResults = make([]model.CheckResult, 0, len(results))
	pr.FailedChecks = []model.CheckResult{}
	for _, sr := range results {
		cr := model.CheckResult{Name: sr.Name, Status: sr.Status, DetailsURL: sr.DetailsURL}
		pr.CheckResults = append(pr.CheckResults, cr)
		if cr.Status == model.CheckStateFailed {
			pr.FailedChecks = append(pr.FailedChecks, cr)
		}
	}

	return &pr, nil
}
