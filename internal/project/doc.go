// Package project holds the stored video project model: ordered scenes of
// ordered shots, the realized versions of each shot, global audio beds and
// volume settings. Validate performs the structural pre-flight check that
// must pass before a project is compiled and submitted.
package project
