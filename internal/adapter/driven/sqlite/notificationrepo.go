package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.NotificationStore = (*NotificationRepo)(nil)

// NotificationRepo is the SQLite implementation of the NotificationStore port interface.
type NotificationRepo struct {
	db  *DB
	now func() time.Time
}

// NewNotificationRepo creates a new NotificationRepo backed by the given DB.
func NewNotificationRepo(db *DB) *NotificationRepo {
	return &NotificationRepo{db: db, now: time.Now}
}

// Record appends intents to the history in one transaction.
func (r *NotificationRepo) Record(ctx context.Context, intents []model.NotificationIntent) error {
	if len(intents) == 0 {
		return nil
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	const insertQuery = `
		INSERT INTO notifications (kind, owner, repo, number, title, body, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := formatTime(r.now())
	for _, in := range intents {
		if _, err := tx.ExecContext(ctx, insertQuery,
			string(in.Kind), in.PR.Owner, in.PR.Repo, in.PR.Number, in.Title, in.Body, in.URL, createdAt,
		); err != nil {
			return fmt.Errorf("insert notification for %s: %w", in.PR, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit notifications: %w", err)
	}

	return nil
}

// ListRecent returns up to limit records, newest first.
func (r *NotificationRepo) ListRecent(ctx context.Context, limit int) ([]model.NotificationRecord, error) {
	const query = `
		SELECT id, kind, owner, repo, number, title, body, url, created_at
		FROM notifications
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	records := []model.NotificationRecord{}
	for rows.Next() {
		rec, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return records, nil
}

func scanNotification(s scanner) (*model.NotificationRecord, error) {
	var rec model.NotificationRecord
	var kind, createdAt string

	err := s.Scan(
		&rec.ID, &kind, &rec.Intent.PR.Owner, &rec.Intent.PR.Repo, &rec.Intent.PR.Number,
		&rec.Intent.Title, &rec.Intent.Body, &rec.Intent.URL, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Intent.Kind = model.IntentKind(kind)
	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &rec, nil
}
