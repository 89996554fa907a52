// Package config loads, normalizes, and validates storyreel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SHOTSTACK_API_KEY and SHOTSTACK_ENV. The rendering engine environment
// selector resolves the edit and ingest base URLs once, at load time, so
// clients built from a Config never re-read settings mid-flight.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
