package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storyreel/internal/edit"
	"storyreel/internal/jobs"
	"storyreel/internal/logging"
	"storyreel/internal/project"
	"storyreel/internal/services"
	"storyreel/internal/services/shotstack"
)

// Submit validates, compiles and submits a project, then persists the
// accepted job as queued. Nothing is persisted when the engine rejects the
// submission.
func (m *Manager) Submit(ctx context.Context, p *project.Project) (*jobs.Job, error) {
	res, err := m.Compile(p)
	if err != nil {
		return nil, err
	}
	ctx = services.WithProjectID(ctx, p.ID)
	logger := logging.WithContext(ctx, m.logger)
	for _, diag := range res.Diagnostics {
		logger.Warn("timeline diagnostic", logging.String("detail", diag))
	}

	return m.submitEdit(ctx, jobs.NewJob{
		Kind:          jobs.KindRender,
		ProjectID:     p.ID,
		TotalDuration: res.TotalDuration,
		ClipCount:     res.ClipCount,
	}, res.Edit)
}

// ExtractAudio submits an audio-only render of a video and persists it as an
// audio job. Use Track to follow it to completion.
func (m *Manager) ExtractAudio(ctx context.Context, videoURL string, duration float64) (*jobs.Job, error) {
	doc, err := shotstack.AudioExtractionEdit(videoURL, duration)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "render", "extract audio", "invalid input", err)
	}
	return m.submitEdit(ctx, jobs.NewJob{
		Kind:          jobs.KindAudio,
		TotalDuration: doc.Duration(),
		ClipCount:     doc.ClipCount(),
	}, doc)
}

// Ingest asks the engine to fetch a source file and persists it as an
// ingest job. Use Track to follow it until the source is ready.
func (m *Manager) Ingest(ctx context.Context, sourceURL string) (*jobs.Job, error) {
	return m.ingest(ctx, sourceURL, 0)
}

func (m *Manager) ingest(ctx context.Context, sourceURL string, retryOf int64) (*jobs.Job, error) {
	correlationID := m.newCorrelationID()
	ctx = services.WithRequestID(ctx, correlationID)
	remoteID, err := m.client.CreateSource(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	job, err := m.store.Create(ctx, jobs.NewJob{
		Kind:          jobs.KindIngest,
		RemoteID:      remoteID,
		EditJSON:      strings.TrimSpace(sourceURL),
		CorrelationID: correlationID,
		RetryOf:       retryOf,
	})
	if err != nil {
		return nil, fmt.Errorf("persist ingest job %s: %w", remoteID, err)
	}
	logging.WithContext(services.WithJobID(ctx, job.ID), m.logger).Info("source ingest requested",
		logging.String(logging.FieldRenderID, remoteID),
		logging.String("source_url", job.EditJSON),
	)
	return job, nil
}

// Resubmit sends the stored edit of a job again as a new job linked to the
// original. Completed jobs and jobs whose polling has not failed are refused.
func (m *Manager) Resubmit(ctx context.Context, jobID int64) (*jobs.Job, error) {
	job, err := m.store.GetByID(ctx, jobID)
	if err != nil {
		return nil, m.lookupError("resubmit", jobID, err)
	}
	switch {
	case job.Status == jobs.StatusDone:
		return nil, services.Wrap(services.ErrValidation, "render", "resubmit", fmt.Sprintf("job %d already completed", job.ID), nil)
	case m.IsTracking(job.ID):
		return nil, services.Wrap(services.ErrValidation, "render", "resubmit", fmt.Sprintf("job %d is being tracked", job.ID), nil)
	case job.IsActive() && !job.NeedsAttention():
		return nil, services.Wrap(services.ErrValidation, "render", "resubmit", fmt.Sprintf("job %d is still in flight", job.ID), nil)
	}

	retry := jobs.NewJob{
		Kind:          job.Kind,
		ProjectID:     job.ProjectID,
		TotalDuration: job.TotalDuration,
		ClipCount:     job.ClipCount,
		RetryOf:       job.ID,
	}
	ctx = services.WithProjectID(ctx, job.ProjectID)

	if job.Kind == jobs.KindIngest {
		return m.ingest(ctx, job.EditJSON, job.ID)
	}

	if strings.TrimSpace(job.EditJSON) == "" {
		return nil, services.Wrap(services.ErrValidation, "render", "resubmit", fmt.Sprintf("job %d has no stored edit", job.ID), nil)
	}
	var doc edit.Edit
	if err := json.Unmarshal([]byte(job.EditJSON), &doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "render", "resubmit", fmt.Sprintf("decode stored edit of job %d", job.ID), err)
	}
	return m.submitEdit(ctx, retry, &doc)
}

func (m *Manager) submitEdit(ctx context.Context, record jobs.NewJob, doc *edit.Edit) (*jobs.Job, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode edit: %w", err)
	}
	record.CorrelationID = m.newCorrelationID()
	record.EditJSON = string(payload)
	ctx = services.WithRequestID(ctx, record.CorrelationID)

	remoteID, err := m.client.Submit(ctx, doc)
	if err != nil {
		logging.WithContext(ctx, m.logger).Error("render submission failed", logging.Error(err))
		return nil, err
	}
	record.RemoteID = remoteID
	job, err := m.store.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("persist render job %s: %w", remoteID, err)
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldRenderID, remoteID),
		logging.String("kind", string(job.Kind)),
		logging.Float64("total_duration", job.TotalDuration),
		logging.Int("clip_count", job.ClipCount),
	}
	if job.RetryOf > 0 {
		attrs = append(attrs, logging.Int64("retry_of", job.RetryOf))
	}
	logging.WithContext(services.WithJobID(ctx, job.ID), m.logger).Info("render submitted", logging.Args(attrs...)...)
	return job, nil
}

func (m *Manager) lookupError(op string, jobID int64, err error) error {
	if errors.Is(err, jobs.ErrNotFound) {
		return services.Wrap(services.ErrNotFound, "render", op, fmt.Sprintf("job %d", jobID), err)
	}
	return err
}
