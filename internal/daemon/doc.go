// Package daemon coordinates the long-running storyreel process.
//
// It wires configuration, the job store, the render manager and the HTTP
// surface into a single lifecycle with flock-based locking to prevent
// multiple instances. While running, the daemon accepts engine webhooks and
// periodically re-polls every job that has not reached a terminal status, so
// jobs whose local poll loop timed out or lost connectivity still converge.
package daemon
