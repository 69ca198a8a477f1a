package sqlite

import (
	"context"
	"fmt"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.FilterStore = (*FilterRepo)(nil)

const (
	filterKindRequired = "required"
	filterKindIgnored  = "ignored"
)

// FilterRepo is the SQLite implementation of the FilterStore port interface.
// A check name has at most one row, so it cannot be both required and ignored.
type FilterRepo struct {
	db *DB
}

// NewFilterRepo creates a new FilterRepo backed by the given DB.
func NewFilterRepo(db *DB) *FilterRepo {
	return &FilterRepo{db: db}
}

// GetFilters returns the stored settings. Names keep the order they were set in.
func (r *FilterRepo) GetFilters(ctx context.Context) (model.FilterSettings, error) {
	const query = `SELECT name, kind FROM check_filters ORDER BY position`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return model.FilterSettings{}, fmt.Errorf("query check filters: %w", err)
	}
	defer rows.Close()

	settings := model.FilterSettings{RequiredChecks: []string{}, IgnoredChecks: []string{}}
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return model.FilterSettings{}, fmt.Errorf("scan check filter: %w", err)
		}
		switch kind {
		case filterKindRequired:
			settings.RequiredChecks = append(settings.RequiredChecks, name)
		case filterKindIgnored:
			settings.IgnoredChecks = append(settings.IgnoredChecks, name)
		}
	}

	if err := rows.Err(); err != nil {
		return model.FilterSettings{}, fmt.Errorf("iterate check filters: %w", err)
	}

	return settings, nil
}

// SetFilters replaces all stored settings. Overlapping names are rejected with
// model.ErrOverlappingCheckNames before anything is written. Duplicate names
// within one list are stored once.
func (r *FilterRepo) SetFilters(ctx context.Context, settings model.FilterSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	if _, err := tx.ExecContext(ctx, `DELETE FROM check_filters`); err != nil {
		return fmt.Errorf("delete check filters: %w", err)
	}

	const insertQuery = `INSERT INTO check_filters (name, kind, position) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING`

	position := 0
	insert := func(kind string, names []string) error {
		for _, name := range names {
			if _, err := tx.ExecContext(ctx, insertQuery, name, kind, position); err != nil {
				return fmt.Errorf("insert %s check %q: %w", kind, name, err)
			}
			position++
		}
		return nil
	}

	if err := insert(filterKindRequired, settings.RequiredChecks); err != nil {
		return err
	}
	if err := insert(filterKindIgnored, settings.IgnoredChecks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit check filters: %w", err)
	}

	return nil
}
