package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Update carries one observed engine status for a job.
type Update struct {
	Status       Status
	AssetURL     string
	ErrorMessage string
	// Polled marks updates that came from a local status poll; they bump the
	// attempt counter and poll timestamp. Webhook deliveries leave both alone.
	Polled bool
}

// ApplyResult reports the persisted job after an ApplyStatus call.
type ApplyResult struct {
	Job *Job
	// Ignored is true when the write was rejected by the transition table
	// (out-of-order or post-terminal status).
	Ignored bool
}

// ApplyStatus records an engine status for the job with the given remote id.
// The write is a single conditional UPDATE guarded by the allowed predecessor
// statuses, so concurrent writers can never regress a job. A successful write
// clears any previous poll failure bookkeeping.
func (s *Store) ApplyStatus(ctx context.Context, remoteID string, update Update) (ApplyResult, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return ApplyResult{}, errors.New("remote id is required")
	}
	if _, ok := ParseStatus(string(update.Status)); !ok {
		return ApplyResult{}, fmt.Errorf("unknown job status %q", update.Status)
	}

	predecessors := AllowedPredecessors(update.Status)
	if len(predecessors) == 0 {
		return ApplyResult{}, fmt.Errorf("status %q has no predecessors", update.Status)
	}

	now := formatTime(time.Now())
	attemptDelta := 0
	var polledAt any
	if update.Polled {
		attemptDelta = 1
		polledAt = now
	}

	args := []any{
		string(update.Status),
		nullableString(update.AssetURL),
		nullableString(update.ErrorMessage),
		attemptDelta,
		now,
		polledAt,
		remoteID,
	}
	args = append(args, statusArgs(predecessors)...)

	res, err := s.execWithRetry(
		ctx,
		`UPDATE render_jobs
         SET status = ?,
             asset_url = COALESCE(?, asset_url),
             error_message = COALESCE(?, error_message),
             poll_state = '', poll_message = NULL,
             attempts = attempts + ?,
             updated_at = ?,
             last_polled_at = COALESCE(?, last_polled_at)
         WHERE remote_id = ? AND status IN (`+makePlaceholders(len(predecessors))+`)`,
		args...,
	)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("apply status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ApplyResult{}, fmt.Errorf("rows affected: %w", err)
	}

	job, err := s.GetByRemoteID(ctx, remoteID)
	if err != nil {
		return ApplyResult{}, err
	}
	return ApplyResult{Job: job, Ignored: affected == 0}, nil
}

// MarkPollOutcome records why a poll loop stopped without a terminal status.
// Terminal jobs are left untouched; the return value reports whether a row changed.
func (s *Store) MarkPollOutcome(ctx context.Context, id int64, state PollState, message string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE render_jobs
         SET poll_state = ?, poll_message = ?, updated_at = ?
         WHERE id = ? AND status NOT IN (?, ?)`,
		string(state),
		nullableString(message),
		formatTime(time.Now()),
		id,
		string(StatusDone),
		string(StatusFailed),
	)
	if err != nil {
		return false, fmt.Errorf("mark poll outcome: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
