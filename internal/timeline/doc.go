// Package timeline compiles a project into an engine edit document.
//
// Compilation is pure and deterministic: no I/O, no clocks, no randomness.
// Scenes play in SceneNumber order. Each scene replays its whole ordered shot
// sequence LoopCount times, and within one pass each shot repeats its own
// LoopCount times before the next shot starts, so shots [A,B] with scene
// loops 2 and A looped twice expand to A,A,B,A,A,B.
//
// Video clips are always muted; audible content lives on separate tracks in a
// fixed order: video, per-shot sound effects, free-standing sound effects,
// voiceover, music, ambient. A category whose effective gain (category times
// master) is zero is left out of the document entirely.
package timeline
