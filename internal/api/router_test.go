package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"storyreel/internal/api"
	"storyreel/internal/jobs"
	"storyreel/internal/render"
	"storyreel/internal/services/shotstack"
	"storyreel/internal/testsupport"
)

type stubRenderer struct {
	refresh func(ctx context.Context, id int64) (*jobs.Job, error)
}

func (s stubRenderer) ApplyCallback(context.Context, shotstack.Callback) (jobs.ApplyResult, error) {
	return jobs.ApplyResult{}, nil
}

func (s stubRenderer) Refresh(ctx context.Context, id int64) (*jobs.Job, error) {
	return s.refresh(ctx, id)
}

func (s stubRenderer) Resubmit(context.Context, int64) (*jobs.Job, error) {
	return nil, nil
}

type fixture struct {
	server *httptest.Server
	store  *jobs.Store
}

func newFixture(t *testing.T, renderer api.Renderer) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken("secret"))
	store := testsupport.MustOpenStore(t, cfg)
	if renderer == nil {
		renderer = render.NewManager(cfg, store, nil, nil)
	}
	server := httptest.NewServer(api.NewRouter(api.Options{Renderer: renderer, Jobs: store, Token: cfg.Paths.APIToken}))
	t.Cleanup(server.Close)
	return &fixture{server: server, store: store}
}

func (f *fixture) do(t *testing.T, method, path, body string, authed bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer secret")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealthSetsRequestID(t *testing.T) {
	f := newFixture(t, nil)
	resp := f.do(t, http.MethodGet, "/health", "", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
	if got := decode[api.HealthResponse](t, resp); got.Status != "ok" {
		t.Fatalf("unexpected health payload %+v", got)
	}
}

func TestWebhookStatusCodes(t *testing.T) {
	f := newFixture(t, nil)
	job := testsupport.NewJob(t, f.store, "render-abc")

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"type":`, http.StatusBadRequest},
		{"unknown status", `{"type":"edit","id":"render-abc","status":"melted"}`, http.StatusBadRequest},
		{"unknown job", `{"type":"edit","id":"render-zzz","status":"done"}`, http.StatusNotFound},
		{"applied", `{"type":"edit","action":"render","id":"render-abc","status":"done","url":"https://cdn.example.com/o.mp4"}`, http.StatusOK},
		{"after terminal", `{"type":"edit","id":"render-abc","status":"rendering"}`, http.StatusAccepted},
	}
	for _, tc := range cases {
		resp := f.do(t, http.MethodPost, "/webhooks/shotstack", tc.body, false)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, resp.StatusCode)
		}
	}

	stored, err := f.store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != jobs.StatusDone || stored.AssetURL != "https://cdn.example.com/o.mp4" {
		t.Fatalf("unexpected stored job %+v", stored)
	}
}

func TestJobEndpointsRequireToken(t *testing.T) {
	f := newFixture(t, nil)
	testsupport.NewJob(t, f.store, "render-1")

	if resp := f.do(t, http.MethodGet, "/api/jobs", "", false); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp := f.do(t, http.MethodGet, "/api/jobs", "", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	list := decode[api.JobListResponse](t, resp)
	if len(list.Jobs) != 1 || list.Jobs[0].RemoteID != "render-1" || list.Stats["queued"] != 1 || list.Stats["done"] != 0 {
		t.Fatalf("unexpected list payload %+v", list)
	}
}

func TestListJobsFiltersByStatus(t *testing.T) {
	f := newFixture(t, nil)
	testsupport.NewJob(t, f.store, "render-1")

	resp := f.do(t, http.MethodGet, "/api/jobs?status=done,failed", "", true)
	if list := decode[api.JobListResponse](t, resp); len(list.Jobs) != 0 {
		t.Fatalf("expected no terminal jobs, got %+v", list.Jobs)
	}
	if resp := f.do(t, http.MethodGet, "/api/jobs?status=exploded", "", true); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp.StatusCode)
	}
}

func TestGetJob(t *testing.T) {
	f := newFixture(t, nil)
	job := testsupport.NewJob(t, f.store, "render-1")

	resp := f.do(t, http.MethodGet, "/api/jobs/"+itoa(job.ID), "", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := decode[api.JobResponse](t, resp); got.Job.ID != job.ID || got.Job.Status != "queued" || got.Job.NeedsAttention {
		t.Fatalf("unexpected job payload %+v", got)
	}
	if resp := f.do(t, http.MethodGet, "/api/jobs/999", "", true); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if resp := f.do(t, http.MethodGet, "/api/jobs/abc", "", true); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestResubmitInFlightJobConflicts(t *testing.T) {
	f := newFixture(t, nil)
	job := testsupport.NewJob(t, f.store, "render-1")

	resp := f.do(t, http.MethodPost, "/api/jobs/"+itoa(job.ID)+"/resubmit", "", true)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestRefreshMapsEngineErrors(t *testing.T) {
	f := newFixture(t, stubRenderer{refresh: func(context.Context, int64) (*jobs.Job, error) {
		return nil, &shotstack.TransportError{Op: "status", StatusCode: http.StatusBadGateway}
	}})
	if resp := f.do(t, http.MethodPost, "/api/jobs/1/refresh", "", true); resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestPanicRecovered(t *testing.T) {
	f := newFixture(t, stubRenderer{refresh: func(context.Context, int64) (*jobs.Job, error) {
		panic("boom")
	}})
	resp := f.do(t, http.MethodPost, "/api/jobs/1/refresh", "", true)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if got := decode[api.ErrorResponse](t, resp); got.RequestID == "" {
		t.Fatalf("expected request id in error payload")
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
