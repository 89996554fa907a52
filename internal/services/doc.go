// Package services defines shared utilities consumed by the render
// orchestrator and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, render ids, project ids, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper; typed errors from the
//     rendering engine client match these markers through errors.Is so the
//     orchestrator can translate failures into persisted poll outcomes.
//
// Vendor clients live in subpackages (see services/shotstack).
package services
