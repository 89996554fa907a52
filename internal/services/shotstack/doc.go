// Package shotstack wraps the cloud rendering engine's edit and ingest APIs.
//
// The client is stateless between calls: Submit posts an edit document,
// Status fetches one status record, and PollUntilTerminal drives a bounded
// poll loop with a progress callback. Non-2xx responses become
// *TransportError values carrying the HTTP status and raw body; an engine
// reported failure is a *JobFailedError and an exhausted poll budget is a
// *JobTimeoutError. Nothing is retried here. Cancelling the context stops
// polling but leaves the remote job running, since the engine has no cancel
// endpoint.
package shotstack
