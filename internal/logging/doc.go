// Package logging builds the slog loggers used by the CLI and the daemon.
//
// Console output prefixes each line with the component that logged it; JSON
// output uses short ts/level/msg keys. WithContext tags lines with the job,
// render, project and request ids carried on a context.
package logging
