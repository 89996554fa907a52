package render

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"storyreel/internal/config"
	"storyreel/internal/edit"
	"storyreel/internal/jobs"
	"storyreel/internal/logging"
	"storyreel/internal/services/shotstack"
)

// RenderClient is the engine surface the manager drives.
type RenderClient interface {
	Submit(ctx context.Context, doc *edit.Edit) (string, error)
	Status(ctx context.Context, id string) (*shotstack.RenderStatus, error)
	PollUntilTerminal(ctx context.Context, id string, opts shotstack.PollOptions) (*shotstack.RenderStatus, error)
	CreateSource(ctx context.Context, url string) (string, error)
	SourceStatus(ctx context.Context, id string) (*shotstack.RenderStatus, error)
	PollSourceUntilReady(ctx context.Context, id string, opts shotstack.PollOptions) (*shotstack.RenderStatus, error)
}

// ErrAlreadyTracking is returned when a poll loop for the job is already running.
var ErrAlreadyTracking = errors.New("job is already being tracked")

// ProgressFunc observes the persisted job after every polled status write.
type ProgressFunc func(job *jobs.Job, attempt int)

// Manager coordinates compilation, submission and job tracking.
type Manager struct {
	cfg    *config.Config
	store  *jobs.Store
	client RenderClient
	logger *slog.Logger

	// tracking holds the ids of jobs with a running poll loop.
	tracking sync.Map

	newCorrelationID func() string
}

// NewManager constructs a render manager.
func NewManager(cfg *config.Config, store *jobs.Store, client RenderClient, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:              cfg,
		store:            store,
		client:           client,
		logger:           logging.NewComponentLogger(logger, "render"),
		newCorrelationID: uuid.NewString,
	}
}

// Store exposes the job store backing the manager.
func (m *Manager) Store() *jobs.Store {
	return m.store
}

// IsTracking reports whether a poll loop is currently running for the job.
func (m *Manager) IsTracking(jobID int64) bool {
	_, ok := m.tracking.Load(jobID)
	return ok
}

func (m *Manager) reserve(jobID int64) bool {
	_, loaded := m.tracking.LoadOrStore(jobID, struct{}{})
	return !loaded
}

func (m *Manager) release(jobID int64) {
	m.tracking.Delete(jobID)
}

func (m *Manager) pollOptions() shotstack.PollOptions {
	return shotstack.PollOptions{
		Interval:    m.cfg.PollInterval(),
		MaxAttempts: m.cfg.Render.MaxPollAttempts,
	}
}
