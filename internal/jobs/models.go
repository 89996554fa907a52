package jobs

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a render job as reported by the engine.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusFetching  Status = "fetching"
	StatusRendering Status = "rendering"
	StatusSaving    Status = "saving"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusQueued,
	StatusFetching,
	StatusRendering,
	StatusSaving,
	StatusDone,
	StatusFailed,
}

// statusRank orders the forward-only lifecycle. Terminal states share the top rank.
var statusRank = map[Status]int{
	StatusQueued:    0,
	StatusFetching:  1,
	StatusRendering: 2,
	StatusSaving:    3,
	StatusDone:      4,
	StatusFailed:    4,
}

// Kind distinguishes what a job was submitted for.
type Kind string

const (
	KindRender Kind = "render"
	KindAudio  Kind = "audio"
	KindIngest Kind = "ingest"
)

// PollState records the outcome of the most recent local poll loop. It is
// bookkeeping only; the engine-reported status is authoritative.
type PollState string

const (
	PollOK             PollState = ""
	PollTimedOut       PollState = "timed_out"
	PollTransportError PollState = "transport_error"
	PollCancelled      PollState = "cancelled"
	PollRejected       PollState = "rejected"
)

// Job represents a render job persisted in SQLite.
type Job struct {
	ID            int64
	Kind          Kind
	ProjectID     string
	RemoteID      string
	Status        Status
	AssetURL      string
	ErrorMessage  string
	PollState     PollState
	PollMessage   string
	Attempts      int
	TotalDuration float64
	ClipCount     int
	EditJSON      string
	CorrelationID string
	RetryOf       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastPolledAt  *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusRank[normalized]
	return normalized, ok
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// ParseKind converts a string into a known Kind.
func ParseKind(value string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(value))); k {
	case KindRender, KindAudio, KindIngest:
		return k, true
	default:
		return "", false
	}
}

// CanTransition reports whether a job in status from may be moved to status to.
// Same-status writes are allowed for non-terminal states so poll bookkeeping
// can be refreshed; terminal states accept nothing.
func CanTransition(from, to Status) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	if from.IsTerminal() {
		return false
	}
	return fromRank <= toRank
}

// AllowedPredecessors lists the statuses a job may currently hold for a write
// of status to succeed.
func AllowedPredecessors(to Status) []Status {
	var out []Status
	for _, from := range allStatuses {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

// IsActive reports whether the job still awaits a terminal engine status.
func (j Job) IsActive() bool {
	return !j.Status.IsTerminal()
}

// NeedsAttention reports whether the last local poll ended without a terminal status.
func (j Job) NeedsAttention() bool {
	return j.IsActive() && j.PollState != PollOK
}
