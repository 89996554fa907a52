// Package api exposes the daemon's HTTP surface: the rendering engine
// webhook receiver and a small read/act API over persisted render jobs.
//
// Handlers translate between JSON payloads and the render manager; all
// lifecycle rules live in the manager and the job store.
package api
