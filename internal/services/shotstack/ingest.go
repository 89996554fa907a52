package shotstack

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"storyreel/internal/services"
)

type sourceRequest struct {
	URL string `json:"url"`
}

type sourceEnvelope struct {
	Data struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes Source `json:"attributes"`
	} `json:"data"`
}

// CreateSource asks the engine to fetch and manage an external media file.
func (c *Client) CreateSource(ctx context.Context, sourceURL string) (string, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return "", services.Wrap(services.ErrValidation, "shotstack", "ingest", "source url required", nil)
	}
	var resp sourceEnvelope
	if err := c.do(ctx, "ingest", http.MethodPost, c.cfg.IngestBaseURL+"/sources", sourceRequest{URL: sourceURL}, &resp); err != nil {
		return "", err
	}
	id := strings.TrimSpace(resp.Data.ID)
	if id == "" {
		return "", services.Wrap(services.ErrExternalTool, "shotstack", "ingest", "response missing source id", nil)
	}
	return id, nil
}

// Source fetches an ingested source.
func (c *Client) Source(ctx context.Context, id string) (*Source, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrValidation, "shotstack", "source", "source id required", nil)
	}
	var resp sourceEnvelope
	if err := c.do(ctx, "source", http.MethodGet, c.cfg.IngestBaseURL+"/sources/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	source := resp.Data.Attributes
	if source.ID == "" {
		source.ID = resp.Data.ID
	}
	if source.ID == "" {
		source.ID = id
	}
	if _, ok := mapIngestStatus(source.Status); !ok {
		return nil, services.Wrap(services.ErrExternalTool, "shotstack", "source",
			fmt.Sprintf("unknown ingest status %q for source %s", source.Status, id), nil)
	}
	return &source, nil
}

// SourceStatus fetches a source and maps it onto the render lifecycle.
func (c *Client) SourceStatus(ctx context.Context, id string) (*RenderStatus, error) {
	source, err := c.Source(ctx, id)
	if err != nil {
		return nil, err
	}
	status := source.RenderStatus()
	return &status, nil
}

// PollSourceUntilReady polls an ingested source with the same semantics as
// PollUntilTerminal; ready maps to done.
func (c *Client) PollSourceUntilReady(ctx context.Context, id string, opts PollOptions) (*RenderStatus, error) {
	return poll(ctx, id, opts, c.SourceStatus)
}
