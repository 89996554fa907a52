// Package jobs persists render job records in SQLite and owns the render
// status state machine.
//
// Every job moves forward through queued → fetching → rendering → saving and
// ends in done or failed. Status writes are a single conditional UPDATE that
// only matches rows whose current status is an allowed predecessor, so racing
// pollers (a manual refresh and the background re-poller, or a webhook
// arriving mid-poll) cannot move a job backwards or out of a terminal state.
// Poll bookkeeping (timed out, transport error, cancelled) lives next to the
// status and never changes it: a timed-out job keeps its remote id and can be
// polled again later.
package jobs
