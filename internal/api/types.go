package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes a persisted render job in a transport-friendly format.
type Job struct {
	ID             int64   `json:"id"`
	Kind           string  `json:"kind"`
	ProjectID      string  `json:"projectId,omitempty"`
	RemoteID       string  `json:"remoteId"`
	Status         string  `json:"status"`
	AssetURL       string  `json:"assetUrl,omitempty"`
	ErrorMessage   string  `json:"errorMessage,omitempty"`
	PollState      string  `json:"pollState,omitempty"`
	PollMessage    string  `json:"pollMessage,omitempty"`
	NeedsAttention bool    `json:"needsAttention"`
	Attempts       int     `json:"attempts"`
	TotalDuration  float64 `json:"totalDuration"`
	ClipCount      int     `json:"clipCount"`
	CorrelationID  string  `json:"correlationId,omitempty"`
	RetryOf        int64   `json:"retryOf,omitempty"`
	CreatedAt      string  `json:"createdAt,omitempty"`
	UpdatedAt      string  `json:"updatedAt,omitempty"`
	LastPolledAt   string  `json:"lastPolledAt,omitempty"`
}

// JobListResponse wraps a collection of jobs with per-status counts.
type JobListResponse struct {
	Jobs  []Job          `json:"jobs"`
	Stats map[string]int `json:"stats"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job Job `json:"job"`
}

// CallbackResponse reports how a webhook delivery was recorded.
type CallbackResponse struct {
	Applied bool `json:"applied"`
	Job     Job  `json:"job"`
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries a human-readable failure.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}
