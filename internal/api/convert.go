package api

import (
	"storyreel/internal/jobs"
)

// FromJob converts a job record to its API representation.
func FromJob(job *jobs.Job) Job {
	if job == nil {
		return Job{}
	}
	dto := Job{
		ID:             job.ID,
		Kind:           string(job.Kind),
		ProjectID:      job.ProjectID,
		RemoteID:       job.RemoteID,
		Status:         string(job.Status),
		AssetURL:       job.AssetURL,
		ErrorMessage:   job.ErrorMessage,
		PollState:      string(job.PollState),
		PollMessage:    job.PollMessage,
		NeedsAttention: job.NeedsAttention(),
		Attempts:       job.Attempts,
		TotalDuration:  job.TotalDuration,
		ClipCount:      job.ClipCount,
		CorrelationID:  job.CorrelationID,
		RetryOf:        job.RetryOf,
	}
	if !job.CreatedAt.IsZero() {
		dto.CreatedAt = job.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		dto.UpdatedAt = job.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if job.LastPolledAt != nil {
		dto.LastPolledAt = job.LastPolledAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromJobs converts a slice of job records.
func FromJobs(list []*jobs.Job) []Job {
	out := make([]Job, 0, len(list))
	for _, job := range list {
		out = append(out, FromJob(job))
	}
	return out
}

// FromStats converts per-status counts, reporting zero for every known status.
func FromStats(stats map[jobs.Status]int) map[string]int {
	out := make(map[string]int, len(jobs.AllStatuses()))
	for _, status := range jobs.AllStatuses() {
		out[string(status)] = stats[status]
	}
	return out
}
