package testsupport

import (
	"context"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/jobs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob inserts a queued render job with the given remote id.
func NewJob(t testing.TB, store *jobs.Store, remoteID string) *jobs.Job {
	t.Helper()

	job, err := store.Create(context.Background(), jobs.NewJob{
		Kind:      jobs.KindRender,
		ProjectID: "project-test",
		RemoteID:  remoteID,
		EditJSON:  `{"timeline":{"tracks":[]},"output":{"format":"mp4"}}`,
	})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return job
}
