package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteRunRepository is the concrete implementation of RunRepository using SQLite.
type SQLiteRunRepository struct {
	db *sql.DB
}

func NewSQLiteRunRepository(db *sql.DB) *SQLiteRunRepository {
	return &SQLiteRunRepository{db: db}
}

func (r *SQLiteRunRepository) SaveStarted(ctx context.Context, run *Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO block_runs
			(id, entry_id, title, action, status, total, processed, succeeded, failed, skipped, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			title = excluded.title,
			total = excluded.total`,
		run.ID, run.EntryID, run.Title, run.Action, run.Status,
		run.Total, run.Processed, run.Succeeded, run.Failed, run.Skipped,
		run.Error, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert block run into SQLite: %w", err)
	}
	return nil
}

func (r *SQLiteRunRepository) SaveFinished(ctx context.Context, run *Run) error {
	if run.FinishedAt == nil {
		now := time.Now()
		run.FinishedAt = &now
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE block_runs SET
			status = ?, title = ?, total = ?, processed = ?, succeeded = ?,
			failed = ?, skipped = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		run.Status, run.Title, run.Total, run.Processed, run.Succeeded,
		run.Failed, run.Skipped, run.Error, *run.FinishedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update block run in SQLite: %w", err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *SQLiteRunRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, entry_id, title, action, status, total, processed, succeeded,
		       failed, skipped, error, started_at, finished_at
		FROM block_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read block run from SQLite: %w", err)
	}
	return run, nil
}

func (r *SQLiteRunRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entry_id, title, action, status, total, processed, succeeded,
		       failed, skipped, error, started_at, finished_at
		FROM block_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query block runs from SQLite: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan block run row: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error from SQLite: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var title, errText sql.NullString
	var finishedAt sql.NullTime

	err := row.Scan(
		&run.ID, &run.EntryID, &title, &run.Action, &run.Status,
		&run.Total, &run.Processed, &run.Succeeded, &run.Failed, &run.Skipped,
		&errText, &run.StartedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Title = title.String
	run.Error = errText.String
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}
