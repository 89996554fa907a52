// Command storyreel compiles video projects into render timelines and drives
// their render jobs on the cloud rendering engine.
//
// Project commands (validate, compile, duration) work offline. Render, ingest
// and extract-audio submit work to the engine and persist a job record in the
// local jobs database; the jobs subcommands inspect and follow those records.
package main
