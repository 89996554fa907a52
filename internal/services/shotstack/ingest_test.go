package shotstack_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storyreel/internal/services/shotstack"
)

func TestIngestSourceLifecycle(t *testing.T) {
	statuses := []string{"queued", "importing", "ready"}
	polls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/ingest/stage/sources":
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), `"url":"https://example.com/raw.mov"`) {
				t.Errorf("unexpected ingest body %s", body)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"data":{"type":"source","id":"src-1"}}`)
		case r.Method == http.MethodGet && r.URL.Path == "/ingest/stage/sources/src-1":
			status := statuses[polls]
			polls++
			_, _ = io.WriteString(w, `{"data":{"type":"source","id":"src-1","attributes":{"id":"src-1","status":"`+status+`","source":"https://cdn.example.com/src-1.mov"}}}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newClient(t, server)
	ctx := context.Background()
	id, err := client.CreateSource(ctx, "https://example.com/raw.mov")
	if err != nil {
		t.Fatalf("CreateSource returned error: %v", err)
	}
	if id != "src-1" {
		t.Fatalf("unexpected source id %q", id)
	}

	var seen []shotstack.Status
	status, err := client.PollSourceUntilReady(ctx, id, fastPoll(5, func(s shotstack.RenderStatus, _ int) {
		seen = append(seen, s.Status)
	}))
	if err != nil {
		t.Fatalf("PollSourceUntilReady returned error: %v", err)
	}
	if status.URL != "https://cdn.example.com/src-1.mov" {
		t.Fatalf("unexpected source url %q", status.URL)
	}
	want := []shotstack.Status{shotstack.StatusQueued, shotstack.StatusFetching, shotstack.StatusDone}
	if strings.Join(statusStrings(seen), ",") != strings.Join(statusStrings(want), ",") {
		t.Fatalf("unexpected mapped statuses %v", seen)
	}
}

func statusStrings(in []shotstack.Status) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func TestSourceRenderStatusMapping(t *testing.T) {
	deleted := shotstack.Source{ID: "src", Status: shotstack.IngestDeleted}.RenderStatus()
	if deleted.Status != shotstack.StatusFailed || deleted.Error != "source deleted" {
		t.Fatalf("unexpected mapping for deleted source: %+v", deleted)
	}
	ready := shotstack.Source{ID: "src", Status: shotstack.IngestReady, Source: "https://cdn.example.com/s.mov"}.RenderStatus()
	if ready.Status != shotstack.StatusDone || ready.URL != "https://cdn.example.com/s.mov" {
		t.Fatalf("unexpected mapping for ready source: %+v", ready)
	}
}

func TestCallbackValidate(t *testing.T) {
	cases := []struct {
		name    string
		cb      shotstack.Callback
		want    shotstack.Status
		wantErr bool
	}{
		{"render done", shotstack.Callback{Type: "edit", Action: "render", ID: "r1", Status: "done", URL: "https://cdn.example.com/o.mp4"}, shotstack.StatusDone, false},
		{"render failed", shotstack.Callback{Type: "render", ID: "r1", Status: "FAILED", Error: "boom"}, shotstack.StatusFailed, false},
		{"ingest ready", shotstack.Callback{Type: "ingest", ID: "s1", Status: "ready"}, shotstack.StatusDone, false},
		{"unknown status", shotstack.Callback{Type: "edit", ID: "r1", Status: "exploded"}, "", true},
		{"unknown type", shotstack.Callback{Type: "serve", ID: "r1", Status: "done"}, "", true},
		{"missing id", shotstack.Callback{Type: "edit", Status: "done"}, "", true},
	}
	for _, tc := range cases {
		got, err := tc.cb.Validate()
		if tc.wantErr {
			if !errors.Is(err, shotstack.ErrInvalidCallback) {
				t.Fatalf("%s: expected ErrInvalidCallback, got %v", tc.name, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%s: got (%q, %v), want %q", tc.name, got, err, tc.want)
		}
	}
}
