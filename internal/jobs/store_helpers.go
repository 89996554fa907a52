package jobs

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, kind, project_id, remote_id, status, asset_url, error_message, poll_state, poll_message, attempts, total_duration, clip_count, edit_json, correlation_id, retry_of, created_at, updated_at, last_polled_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id            int64
		kind          string
		projectID     sql.NullString
		remoteID      sql.NullString
		statusStr     string
		assetURL      sql.NullString
		errorMessage  sql.NullString
		pollState     sql.NullString
		pollMessage   sql.NullString
		attempts      sql.NullInt64
		totalDuration sql.NullFloat64
		clipCount     sql.NullInt64
		editJSON      sql.NullString
		correlationID sql.NullString
		retryOf       sql.NullInt64
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
		polledRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&kind,
		&projectID,
		&remoteID,
		&statusStr,
		&assetURL,
		&errorMessage,
		&pollState,
		&pollMessage,
		&attempts,
		&totalDuration,
		&clipCount,
		&editJSON,
		&correlationID,
		&retryOf,
		&createdRaw,
		&updatedRaw,
		&polledRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:            id,
		Kind:          Kind(kind),
		ProjectID:     projectID.String,
		RemoteID:      remoteID.String,
		Status:        Status(statusStr),
		AssetURL:      assetURL.String,
		ErrorMessage:  errorMessage.String,
		PollState:     PollState(pollState.String),
		PollMessage:   pollMessage.String,
		Attempts:      int(attempts.Int64),
		TotalDuration: totalDuration.Float64,
		ClipCount:     int(clipCount.Int64),
		EditJSON:      editJSON.String,
		CorrelationID: correlationID.String,
		RetryOf:       retryOf.Int64,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if polledRaw.Valid {
		if polled, err := parseTimeString(polledRaw.String); err == nil {
			job.LastPolledAt = &polled
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

func statusArgs(statuses []Status) []any {
	args := make([]any, 0, len(statuses))
	for _, status := range statuses {
		args = append(args, string(status))
	}
	return args
}
