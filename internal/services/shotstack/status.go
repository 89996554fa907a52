package shotstack

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the lifecycle state reported by the engine.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusFetching  Status = "fetching"
	StatusRendering Status = "rendering"
	StatusSaving    Status = "saving"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	switch s := Status(strings.ToLower(strings.TrimSpace(value))); s {
	case StatusQueued, StatusFetching, StatusRendering, StatusSaving, StatusDone, StatusFailed:
		return s, true
	default:
		return "", false
	}
}

// IsTerminal reports whether the status is done or failed.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// RenderStatus is one status record of a render job.
type RenderStatus struct {
	ID         string  `json:"id"`
	Owner      string  `json:"owner,omitempty"`
	Status     Status  `json:"status"`
	URL        string  `json:"url,omitempty"`
	Poster     string  `json:"poster,omitempty"`
	Thumbnail  string  `json:"thumbnail,omitempty"`
	Error      string  `json:"error,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
	RenderTime float64 `json:"renderTime,omitempty"`
	Created    string  `json:"created,omitempty"`
	Updated    string  `json:"updated,omitempty"`
}

// IngestStatus is the lifecycle state of an ingested source.
type IngestStatus string

const (
	IngestQueued      IngestStatus = "queued"
	IngestImporting   IngestStatus = "importing"
	IngestReady       IngestStatus = "ready"
	IngestFailed      IngestStatus = "failed"
	IngestDeleted     IngestStatus = "deleted"
	IngestOverwritten IngestStatus = "overwritten"
)

// Source is an ingested media file managed by the engine.
type Source struct {
	ID       string       `json:"id"`
	Owner    string       `json:"owner,omitempty"`
	Input    string       `json:"input,omitempty"`
	Source   string       `json:"source,omitempty"`
	Status   IngestStatus `json:"status"`
	Width    int          `json:"width,omitempty"`
	Height   int          `json:"height,omitempty"`
	Duration float64      `json:"duration,omitempty"`
	FPS      float64      `json:"fps,omitempty"`
	Error    string       `json:"error,omitempty"`
	Created  string       `json:"created,omitempty"`
	Updated  string       `json:"updated,omitempty"`
}

// mapIngestStatus folds ingest states onto the render lifecycle.
func mapIngestStatus(status IngestStatus) (Status, bool) {
	switch IngestStatus(strings.ToLower(strings.TrimSpace(string(status)))) {
	case IngestQueued:
		return StatusQueued, true
	case IngestImporting:
		return StatusFetching, true
	case IngestReady:
		return StatusDone, true
	case IngestFailed, IngestDeleted, IngestOverwritten:
		return StatusFailed, true
	default:
		return "", false
	}
}

// RenderStatus maps the source onto a render status record so ingest jobs
// share the render lifecycle. Unknown ingest states map to queued.
func (s Source) RenderStatus() RenderStatus {
	status, ok := mapIngestStatus(s.Status)
	if !ok {
		status = StatusQueued
	}
	rs := RenderStatus{
		ID:       s.ID,
		Owner:    s.Owner,
		Status:   status,
		Error:    s.Error,
		Duration: s.Duration,
		Created:  s.Created,
		Updated:  s.Updated,
	}
	if status == StatusDone {
		rs.URL = s.Source
	}
	if status == StatusFailed && rs.Error == "" && s.Status != IngestFailed {
		rs.Error = "source " + string(s.Status)
	}
	return rs
}

// Callback types.
const (
	CallbackEdit   = "edit"
	CallbackRender = "render"
	CallbackIngest = "ingest"
)

// Callback is the webhook payload posted when a job finishes.
type Callback struct {
	Type      string `json:"type"`
	Action    string `json:"action,omitempty"`
	ID        string `json:"id"`
	Owner     string `json:"owner,omitempty"`
	Status    string `json:"status"`
	URL       string `json:"url,omitempty"`
	Error     string `json:"error,omitempty"`
	Completed string `json:"completed,omitempty"`
}

// ErrInvalidCallback marks a webhook payload that fails validation.
var ErrInvalidCallback = errors.New("invalid callback")

// IsIngest reports whether the callback concerns an ingested source.
func (c Callback) IsIngest() bool {
	return strings.EqualFold(strings.TrimSpace(c.Type), CallbackIngest)
}

// Validate checks the payload against the same status enumeration used by
// polling and returns the normalized status.
func (c Callback) Validate() (Status, error) {
	if strings.TrimSpace(c.ID) == "" {
		return "", fmt.Errorf("%w: id is required", ErrInvalidCallback)
	}
	switch strings.ToLower(strings.TrimSpace(c.Type)) {
	case CallbackIngest:
		status, ok := mapIngestStatus(IngestStatus(c.Status))
		if !ok {
			return "", fmt.Errorf("%w: unknown ingest status %q", ErrInvalidCallback, c.Status)
		}
		return status, nil
	case CallbackEdit, CallbackRender:
		status, ok := ParseStatus(c.Status)
		if !ok {
			return "", fmt.Errorf("%w: unknown render status %q", ErrInvalidCallback, c.Status)
		}
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidCallback, c.Type)
	}
}
