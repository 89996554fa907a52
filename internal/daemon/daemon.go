package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"storyreel/internal/config"
	"storyreel/internal/jobs"
	"storyreel/internal/logging"
	"storyreel/internal/render"
)

const defaultResumeInterval = 30 * time.Second

// Daemon coordinates background re-polling and the HTTP surface and
// enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *jobs.Store
	manager *render.Manager

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running    atomic.Bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	lastResume atomic.Int64
	lastErr    atomic.Value
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	JobsDBPath   string
	LockFilePath string
	APIAddress   string
	JobStats     map[jobs.Status]int
	LastResume   time.Time
	LastError    string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *jobs.Store, manager *render.Manager, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || manager == nil {
		return nil, errors.New("daemon requires config, store, and render manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		manager:  manager,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, starts the API server and launches the
// background re-poll loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another storyreel daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.running.Store(true)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.resumeLoop(runCtx)
	}()

	d.logger.Info("storyreel daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.api.address()),
		logging.Duration("resume_interval", d.cfg.ResumeInterval()),
	)
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("storyreel daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		JobsDBPath:   d.store.Path(),
		LockFilePath: d.lockPath,
		APIAddress:   d.api.address(),
	}
	if stats, err := d.store.Stats(ctx); err == nil {
		status.JobStats = stats
	}
	if ts := d.lastResume.Load(); ts > 0 {
		status.LastResume = time.Unix(0, ts)
	}
	if msg, ok := d.lastErr.Load().(string); ok {
		status.LastError = msg
	}
	return status
}

// resumeLoop re-polls active jobs right away and then on every tick. A pass
// blocks until its polls finish; ticks that fire meanwhile are dropped.
func (d *Daemon) resumeLoop(ctx context.Context) {
	interval := d.cfg.ResumeInterval()
	if interval <= 0 {
		interval = defaultResumeInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		d.resumeOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *Daemon) resumeOnce(ctx context.Context) {
	started, err := d.manager.Resume(ctx)
	d.lastResume.Store(time.Now().UnixNano())
	if err != nil {
		if ctx.Err() == nil {
			d.lastErr.Store(err.Error())
			d.logger.Warn("resume pass failed", logging.Error(err))
		}
		return
	}
	d.lastErr.Store("")
	if started > 0 {
		d.logger.Debug("resume pass complete", logging.Int("jobs", started))
	}
}
