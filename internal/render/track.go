package render

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"storyreel/internal/jobs"
	"storyreel/internal/logging"
	"storyreel/internal/services"
	"storyreel/internal/services/shotstack"
)

// Track polls a job until the engine reports a terminal status or the poll
// budget runs out. Every polled status is persisted as it arrives. A loop
// that stops early records its reason in the job's poll state and returns
// the polling error alongside the latest persisted job.
func (m *Manager) Track(ctx context.Context, jobID int64, observers ...ProgressFunc) (*jobs.Job, error) {
	job, err := m.store.GetByID(ctx, jobID)
	if err != nil {
		return nil, m.lookupError("track", jobID, err)
	}
	if job.Status.IsTerminal() {
		return job, nil
	}
	if !m.reserve(job.ID) {
		return job, ErrAlreadyTracking
	}
	defer m.release(job.ID)
	return m.track(ctx, job, observers)
}

func (m *Manager) track(ctx context.Context, job *jobs.Job, observers []ProgressFunc) (*jobs.Job, error) {
	ctx = services.WithRenderID(services.WithJobID(ctx, job.ID), job.RemoteID)
	ctx = services.WithProjectID(ctx, job.ProjectID)
	logger := logging.WithContext(ctx, m.logger)

	var applyErr error
	opts := m.pollOptions()
	opts.OnProgress = func(status shotstack.RenderStatus, attempt int) {
		res, err := m.apply(ctx, job.RemoteID, status, true)
		if err != nil {
			if applyErr == nil {
				applyErr = err
			}
			logger.Error("persist polled status failed", logging.Error(err), logging.Int(logging.FieldAttempt, attempt))
			return
		}
		logger.Debug("render status polled",
			logging.String(logging.FieldStatus, string(status.Status)),
			logging.Int(logging.FieldAttempt, attempt),
			logging.Bool("ignored", res.Ignored),
		)
		for _, observe := range observers {
			observe(res.Job, attempt)
		}
	}

	poll := m.client.PollUntilTerminal
	if job.Kind == jobs.KindIngest {
		poll = m.client.PollSourceUntilReady
	}
	_, err := poll(ctx, job.RemoteID, opts)

	// Bookkeeping writes must land even when ctx was cancelled.
	persistCtx := context.WithoutCancel(ctx)
	if outcome := services.FailureOutcome(err); err != nil && outcome != jobs.PollOK {
		if _, markErr := m.store.MarkPollOutcome(persistCtx, job.ID, outcome, err.Error()); markErr != nil {
			logger.Error("persist poll outcome failed", logging.Error(markErr))
		}
		logger.Warn("render polling stopped",
			logging.String("poll_state", string(outcome)),
			logging.String("error_kind", shotstack.ErrorKind(err)),
			logging.Error(err),
		)
	}

	latest, getErr := m.store.GetByID(persistCtx, job.ID)
	if getErr != nil {
		return nil, errors.Join(err, getErr)
	}
	if err == nil && applyErr != nil {
		err = applyErr
	}
	if err == nil {
		logger.Info("render finished",
			logging.String(logging.FieldStatus, string(latest.Status)),
			logging.String("asset_url", latest.AssetURL),
		)
	}
	return latest, err
}

// Refresh performs one status check for a job and persists the result.
func (m *Manager) Refresh(ctx context.Context, jobID int64) (*jobs.Job, error) {
	job, err := m.store.GetByID(ctx, jobID)
	if err != nil {
		return nil, m.lookupError("refresh", jobID, err)
	}
	if job.Status.IsTerminal() {
		return job, nil
	}
	ctx = services.WithRenderID(services.WithJobID(ctx, job.ID), job.RemoteID)

	fetch := m.client.Status
	if job.Kind == jobs.KindIngest {
		fetch = m.client.SourceStatus
	}
	status, err := fetch(ctx, job.RemoteID)
	if err != nil {
		if outcome := services.FailureOutcome(err); outcome != jobs.PollOK {
			if _, markErr := m.store.MarkPollOutcome(context.WithoutCancel(ctx), job.ID, outcome, err.Error()); markErr != nil {
				return nil, errors.Join(err, markErr)
			}
		}
		return nil, err
	}
	res, err := m.apply(ctx, job.RemoteID, *status, true)
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, m.logger).Info("render status refreshed",
		logging.String(logging.FieldStatus, string(res.Job.Status)),
		logging.Bool("ignored", res.Ignored),
	)
	return res.Job, nil
}

// Resume re-polls every active job concurrently, bounded by the configured
// poll concurrency. Jobs with a running poll loop are skipped, and so are jobs
// the engine rejected (unknown id or bad credentials); those only move again
// through Refresh, a webhook or Resubmit. It returns the number of jobs
// polled; per-job polling errors are persisted and logged, not returned.
func (m *Manager) Resume(ctx context.Context) (int, error) {
	active, err := m.store.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active jobs: %w", err)
	}
	limit := m.cfg.Render.MaxConcurrentPolls
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	started, rejected := 0, 0
	for _, job := range active {
		if job.PollState == jobs.PollRejected {
			rejected++
			continue
		}
		if !m.reserve(job.ID) {
			continue
		}
		started++
		g.Go(func() error {
			defer m.release(job.ID)
			if _, err := m.track(gctx, job, nil); err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return started, err
	}
	if started > 0 {
		m.logger.Info("resumed active jobs",
			logging.Int("count", started),
			logging.Int("rejected", rejected),
			logging.Int("skipped", len(active)-started-rejected),
		)
	}
	return started, nil
}

// ApplyCallback records a webhook delivery. Invalid payloads wrap
// services.ErrValidation and unknown remote ids wrap services.ErrNotFound.
// A delivery that arrives after a terminal status is reported as ignored.
func (m *Manager) ApplyCallback(ctx context.Context, cb shotstack.Callback) (jobs.ApplyResult, error) {
	status, err := cb.Validate()
	if err != nil {
		return jobs.ApplyResult{}, services.Wrap(services.ErrValidation, "render", "callback", "invalid payload", err)
	}
	job, err := m.store.GetByRemoteID(ctx, cb.ID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return jobs.ApplyResult{}, services.Wrap(services.ErrNotFound, "render", "callback", "unknown render "+cb.ID, err)
		}
		return jobs.ApplyResult{}, err
	}
	ctx = services.WithRenderID(services.WithJobID(ctx, job.ID), job.RemoteID)

	res, err := m.apply(ctx, cb.ID, shotstack.RenderStatus{ID: cb.ID, Status: status, URL: cb.URL, Error: cb.Error}, false)
	if err != nil {
		return jobs.ApplyResult{}, err
	}
	logger := logging.WithContext(ctx, m.logger)
	if res.Ignored {
		logger.Info("webhook status ignored",
			logging.String(logging.FieldStatus, string(status)),
			logging.String("current_status", string(res.Job.Status)),
		)
	} else {
		logger.Info("webhook status applied", logging.String(logging.FieldStatus, string(status)))
	}
	return res, nil
}

func (m *Manager) apply(ctx context.Context, remoteID string, status shotstack.RenderStatus, polled bool) (jobs.ApplyResult, error) {
	next, ok := jobs.ParseStatus(string(status.Status))
	if !ok {
		return jobs.ApplyResult{}, services.Wrap(services.ErrExternalTool, "render", "apply status", fmt.Sprintf("unknown status %q", status.Status), nil)
	}
	update := jobs.Update{Status: next, Polled: polled}
	switch next {
	case jobs.StatusDone:
		update.AssetURL = status.URL
	case jobs.StatusFailed:
		update.ErrorMessage = status.Error
	}
	return m.store.ApplyStatus(ctx, remoteID, update)
}
