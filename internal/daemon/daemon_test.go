package daemon_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storyreel/internal/config"
	"storyreel/internal/daemon"
	"storyreel/internal/edit"
	"storyreel/internal/jobs"
	"storyreel/internal/render"
	"storyreel/internal/services/shotstack"
	"storyreel/internal/testsupport"
)

// doneClient reports every job as finished on the first poll.
type doneClient struct{}

func (doneClient) Submit(context.Context, *edit.Edit) (string, error) { return "render-new", nil }

func (doneClient) CreateSource(context.Context, string) (string, error) { return "source-new", nil }

func (doneClient) Status(_ context.Context, id string) (*shotstack.RenderStatus, error) {
	return &shotstack.RenderStatus{ID: id, Status: shotstack.StatusDone, URL: "https://cdn.example.com/" + id + ".mp4"}, nil
}

func (c doneClient) SourceStatus(ctx context.Context, id string) (*shotstack.RenderStatus, error) {
	return c.Status(ctx, id)
}

func (c doneClient) PollUntilTerminal(ctx context.Context, id string, opts shotstack.PollOptions) (*shotstack.RenderStatus, error) {
	status, _ := c.Status(ctx, id)
	if opts.OnProgress != nil {
		opts.OnProgress(*status, 1)
	}
	return status, nil
}

func (c doneClient) PollSourceUntilReady(ctx context.Context, id string, opts shotstack.PollOptions) (*shotstack.RenderStatus, error) {
	return c.PollUntilTerminal(ctx, id, opts)
}

func newDaemon(t *testing.T, cfg *config.Config) (*daemon.Daemon, *jobs.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	mgr := render.NewManager(cfg, store, doneClient{}, nil)
	d, err := daemon.New(cfg, store, mgr, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)
	return d, store
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	status := d.Status(ctx)
	if !status.Running || status.LockFilePath != cfg.LockPath() {
		t.Fatalf("unexpected status %+v", status)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	resp, err := http.Get("http://" + status.APIAddress + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected health status %d", resp.StatusCode)
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestSecondInstanceRefused(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, _ := newDaemon(t, cfg)
	second, _ := newDaemon(t, cfg)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		t.Fatal("expected second instance to be refused")
	}
}

func TestDaemonResumesActiveJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, store := newDaemon(t, cfg)
	job := testsupport.NewJob(t, store, "render-pending")

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		current, err := store.GetByID(ctx, job.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if current.Status == jobs.StatusDone && !d.Status(ctx).LastResume.IsZero() {
			if current.AssetURL != "https://cdn.example.com/render-pending.mp4" {
				t.Fatalf("unexpected asset url %q", current.AssetURL)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job was not resumed: %+v", current)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
