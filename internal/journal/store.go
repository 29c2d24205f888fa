package journal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ytget/course-archiver/internal/model"
)

// ErrNotFound is returned when a run does not exist
var ErrNotFound = errors.New("not found")

// Store reads and writes run history
type Store struct {
	db *DB
}

// NewStore creates a new journal store
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// StartRun inserts a run that has not finished yet
func (s *Store) StartRun(ctx context.Context, summary *model.RunSummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, input, output, started_at)
		VALUES (?, ?, ?, ?)
	`, summary.RunID, summary.Input, summary.Output, summary.StartedAt.UTC())
	return err
}

// FinishRun stores the final counts of a run
func (s *Store) FinishRun(ctx context.Context, summary *model.RunSummary) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET modules = ?, lessons = ?, fetched = ?, skipped = ?, failed = ?, error = ?, finished_at = ?
		WHERE id = ?
	`, summary.Modules, summary.Lessons, summary.Fetched, summary.Skipped, summary.Failed,
		summary.Error, summary.FinishedAt.UTC(), summary.RunID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordAsset stores the final state of an asset
func (s *Store) RecordAsset(ctx context.Context, task *model.AssetTask) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (id, run_id, kind, lesson, url, destination, status, error, size, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			size = excluded.size,
			finished_at = excluded.finished_at
	`, task.ID, task.RunID, task.Kind.String(), task.LessonTitle, task.URL, task.Destination,
		task.Status.String(), task.LastError, task.Size, nullTime(task.StartedAt), nullTime(task.FinishedAt))
	return err
}

// GetRun retrieves a run by ID
func (s *Store) GetRun(ctx context.Context, id string) (*model.RunSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, input, output, modules, lessons, fetched, skipped, failed, error, started_at, finished_at
		FROM runs
		WHERE id = ?
	`, id)

	summary, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return summary, err
}

// RecentRuns returns up to limit runs, newest first
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*model.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, input, output, modules, lessons, fetched, skipped, failed, error, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*model.RunSummary
	for rows.Next() {
		summary, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, summary)
	}
	return runs, rows.Err()
}

// RunAssets returns the assets of a run, optionally filtered by status
func (s *Store) RunAssets(ctx context.Context, runID string, status model.FetchStatus) ([]*model.AssetTask, error) {
	query := `
		SELECT id, run_id, kind, lesson, url, destination, status, error, size, started_at, finished_at
		FROM assets
		WHERE run_id = ?`
	args := []any{runID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status.String())
	}
	query += " ORDER BY started_at, rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*model.AssetTask
	for rows.Next() {
		var (
			task              model.AssetTask
			kind, state       string
			started, finished sql.NullTime
		)
		if err := rows.Scan(&task.ID, &task.RunID, &kind, &task.LessonTitle, &task.URL, &task.Destination,
			&state, &task.LastError, &task.Size, &started, &finished); err != nil {
			return nil, err
		}
		task.Kind = model.AssetKind(kind)
		task.Status = model.FetchStatus(state)
		task.StartedAt = started.Time
		task.FinishedAt = finished.Time
		tasks = append(tasks, &task)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.RunSummary, error) {
	var (
		summary  model.RunSummary
		finished sql.NullTime
	)
	err := row.Scan(&summary.RunID, &summary.Input, &summary.Output, &summary.Modules, &summary.Lessons,
		&summary.Fetched, &summary.Skipped, &summary.Failed, &summary.Error, &summary.StartedAt, &finished)
	if err != nil {
		return nil, err
	}
	summary.FinishedAt = finished.Time
	return &summary, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
