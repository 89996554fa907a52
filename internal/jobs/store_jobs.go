package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NewJob describes a freshly submitted engine job.
type NewJob struct {
	Kind          Kind
	ProjectID     string
	RemoteID      string
	Status        Status
	TotalDuration float64
	ClipCount     int
	EditJSON      string
	CorrelationID string
	RetryOf       int64
}

// Create inserts a job record for an accepted submission. Status defaults to queued.
func (s *Store) Create(ctx context.Context, job NewJob) (*Job, error) {
	if strings.TrimSpace(job.RemoteID) == "" {
		return nil, errors.New("remote id is required")
	}
	if job.Kind == "" {
		job.Kind = KindRender
	}
	if _, ok := ParseKind(string(job.Kind)); !ok {
		return nil, fmt.Errorf("unknown job kind %q", job.Kind)
	}
	if job.Status == "" {
		job.Status = StatusQueued
	}
	if _, ok := ParseStatus(string(job.Status)); !ok {
		return nil, fmt.Errorf("unknown job status %q", job.Status)
	}

	timestamp := formatTime(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO render_jobs (
            kind, project_id, remote_id, status, poll_state, attempts,
            total_duration, clip_count, edit_json, correlation_id, retry_of,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, '', 0, ?, ?, ?, ?, ?, ?, ?)`,
		string(job.Kind),
		nullableString(job.ProjectID),
		job.RemoteID,
		string(job.Status),
		job.TotalDuration,
		job.ClipCount,
		nullableString(job.EditJSON),
		nullableString(job.CorrelationID),
		nullableInt(job.RetryOf),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a job by local identifier. Missing rows return ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM render_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// GetByRemoteID fetches a job by the engine-assigned identifier.
func (s *Store) GetByRemoteID(ctx context.Context, remoteID string) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM render_jobs WHERE remote_id = ?`, remoteID)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: remote id %q", ErrNotFound, remoteID)
	}
	if err != nil {
		return nil, fmt.Errorf("get job by remote id: %w", err)
	}
	return job, nil
}

// List returns jobs ordered by id, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM render_jobs`
	var args []any
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		args = statusArgs(statuses)
	}
	query += ` ORDER BY id`
	return s.queryJobs(ctx, query, args...)
}

// ListActive returns jobs that have not reached a terminal status.
func (s *Store) ListActive(ctx context.Context) ([]*Job, error) {
	return s.List(ctx, StatusQueued, StatusFetching, StatusRendering, StatusSaving)
}

// ListByProject returns every job submitted for a project, oldest first.
func (s *Store) ListByProject(ctx context.Context, projectID string) ([]*Job, error) {
	return s.queryJobs(ctx, `SELECT `+jobColumns+` FROM render_jobs WHERE project_id = ? ORDER BY id`, projectID)
}

func (s *Store) queryJobs(ctx context.Context, query string, args ...any) ([]*Job, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, job)
	}
	return out, rows.Err()
}
