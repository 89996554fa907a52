// Package render orchestrates the render lifecycle of a stored project.
//
// A Manager validates and compiles a project into an edit document, submits
// it to the rendering engine, persists the accepted job, and then follows the
// job to a terminal status. Status updates arrive from local polling or from
// engine webhooks; both funnel through the job store's conditional update so
// a job only ever moves forward. A poll loop that ends without a terminal
// status records why in the job's poll state and leaves the last engine
// status untouched, so the job can be re-polled later.
package render
