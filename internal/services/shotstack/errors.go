package shotstack

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storyreel/internal/services"
)

const maxErrorBody = 512

// TransportError wraps a failed request: either no response (Err set) or a
// non-2xx response (StatusCode and Body set).
type TransportError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("shotstack %s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	}
	body := strings.TrimSpace(e.Body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("shotstack %s: %s %s: http %d: %s", e.Op, e.Method, e.URL, e.StatusCode, body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a later attempt could succeed.
func (e *TransportError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Is maps the response onto the shared service markers.
func (e *TransportError) Is(target error) bool {
	switch target {
	case services.ErrExternalTool:
		return true
	case services.ErrTransient:
		return e.Retryable()
	case services.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case services.ErrConfiguration:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case services.ErrValidation:
		return e.StatusCode >= 400 && e.StatusCode < 500 && !e.Retryable() &&
			e.StatusCode != http.StatusNotFound && e.StatusCode != http.StatusUnauthorized && e.StatusCode != http.StatusForbidden
	}
	return false
}

func (e *TransportError) ErrorKind() string {
	return "transport"
}

// JobFailedError is the engine's authoritative failure of a job.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "no error message reported"
	}
	return fmt.Sprintf("shotstack job %s failed: %s", e.JobID, msg)
}

func (e *JobFailedError) Is(target error) bool {
	return target == services.ErrJobFailed
}

func (e *JobFailedError) ErrorKind() string {
	return "job_failed"
}

// JobTimeoutError means polling gave up before a terminal status. The job may
// still complete; callers keep the id and may poll again.
type JobTimeoutError struct {
	JobID      string
	Attempts   int
	LastStatus Status
}

func (e *JobTimeoutError) Error() string {
	return fmt.Sprintf("shotstack job %s still %s after %d polls", e.JobID, e.LastStatus, e.Attempts)
}

func (e *JobTimeoutError) Is(target error) bool {
	return target == services.ErrTimeout
}

func (e *JobTimeoutError) ErrorKind() string {
	return "timeout"
}

// ErrorKind returns the classifier of the first typed error in err's chain.
func ErrorKind(err error) string {
	var kinded interface{ ErrorKind() string }
	if errors.As(err, &kinded) {
		return kinded.ErrorKind()
	}
	return ""
}
