package shotstack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storyreel/internal/edit"
	"storyreel/internal/services"
)

// Poll defaults: 120 polls three seconds apart, about six minutes.
const (
	DefaultPollInterval    = 3 * time.Second
	DefaultMaxPollAttempts = 120
)

// PollOptions bounds a poll loop. OnProgress fires after every status
// fetch, terminal or not, with the 1-based attempt number.
type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
	OnProgress  func(status RenderStatus, attempt int)
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxPollAttempts
	}
	return o
}

type envelope[T any] struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Response T      `json:"response"`
}

type queuedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Submit posts an edit for rendering and returns the engine's job id.
func (c *Client) Submit(ctx context.Context, doc *edit.Edit) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", services.Wrap(services.ErrValidation, "shotstack", "submit", "edit rejected before submission", err)
	}
	var resp envelope[queuedResponse]
	if err := c.do(ctx, "submit", http.MethodPost, c.cfg.EditBaseURL+"/render", doc, &resp); err != nil {
		return "", err
	}
	id := strings.TrimSpace(resp.Response.ID)
	if id == "" {
		return "", services.Wrap(services.ErrExternalTool, "shotstack", "submit", "response missing render id: "+resp.Message, nil)
	}
	return id, nil
}

// Status fetches the current status record of a render job.
func (c *Client) Status(ctx context.Context, id string) (*RenderStatus, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrValidation, "shotstack", "status", "render id required", nil)
	}
	var resp envelope[RenderStatus]
	if err := c.do(ctx, "status", http.MethodGet, c.cfg.EditBaseURL+"/render/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	status, ok := ParseStatus(string(resp.Response.Status))
	if !ok {
		return nil, services.Wrap(services.ErrExternalTool, "shotstack", "status",
			fmt.Sprintf("unknown status %q for render %s", resp.Response.Status, id), nil)
	}
	record := resp.Response
	record.Status = status
	if record.ID == "" {
		record.ID = id
	}
	return &record, nil
}

// PollUntilTerminal polls a render job until done, failed, or the attempt
// budget runs out. Done returns the final record; failed returns
// *JobFailedError; exhaustion returns *JobTimeoutError. Transport errors end
// the loop immediately. The wait between polls honours ctx.
func (c *Client) PollUntilTerminal(ctx context.Context, id string, opts PollOptions) (*RenderStatus, error) {
	return poll(ctx, id, opts, c.Status)
}

func poll(ctx context.Context, id string, opts PollOptions, fetch func(context.Context, string) (*RenderStatus, error)) (*RenderStatus, error) {
	opts = opts.withDefaults()
	var last *RenderStatus
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		status, err := fetch(ctx, id)
		if err != nil {
			return last, err
		}
		last = status
		if opts.OnProgress != nil {
			opts.OnProgress(*status, attempt)
		}
		switch status.Status {
		case StatusDone:
			return status, nil
		case StatusFailed:
			return status, &JobFailedError{JobID: id, Message: status.Error}
		}
		if attempt == opts.MaxAttempts {
			break
		}
		if err := sleep(ctx, opts.Interval); err != nil {
			return last, err
		}
	}
	lastStatus := Status("")
	if last != nil {
		lastStatus = last.Status
	}
	return last, &JobTimeoutError{JobID: id, Attempts: opts.MaxAttempts, LastStatus: lastStatus}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AudioExtractionEdit builds the single-clip document that converts a video
// into an audio-only file of the given duration.
func AudioExtractionEdit(videoURL string, duration float64) (*edit.Edit, error) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return nil, errors.New("video url required")
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration %g must be positive", duration)
	}
	return &edit.Edit{
		Timeline: edit.Timeline{
			Tracks: []edit.Track{{Clips: []edit.Clip{{
				Asset:  edit.VideoAsset{Src: videoURL, Volume: edit.Volume(1)},
				Start:  0,
				Length: duration,
			}}}},
		},
		Output: edit.Output{Format: edit.FormatMP3},
	}, nil
}

// ExtractAudio renders a video's soundtrack to mp3 through the regular
// submit and poll cycle and returns the audio URL.
func (c *Client) ExtractAudio(ctx context.Context, videoURL string, duration float64, opts PollOptions) (string, error) {
	doc, err := AudioExtractionEdit(videoURL, duration)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "shotstack", "extract audio", "invalid input", err)
	}
	id, err := c.Submit(ctx, doc)
	if err != nil {
		return "", err
	}
	status, err := c.PollUntilTerminal(ctx, id, opts)
	if err != nil {
		return "", err
	}
	if status.URL == "" {
		return "", services.Wrap(services.ErrExternalTool, "shotstack", "extract audio", "render "+id+" finished without a url", nil)
	}
	return status.URL, nil
}
