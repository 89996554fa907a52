package timeline

import (
	"sort"

	"storyreel/internal/project"
)

// occurrence is one on-timeline play of a shot.
type occurrence struct {
	scene     project.Scene
	shot      project.Shot
	start     float64
	shotIndex int  // position within the scene pass
	lastShot  bool // final shot of the pass
	lastLoop  bool // final repetition of this shot within the pass
	lastPass  bool // final scene loop
}

// sortedScenes returns scenes ordered by SceneNumber, keeping input order on ties.
func sortedScenes(scenes []project.Scene) []project.Scene {
	out := append([]project.Scene(nil), scenes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SceneNumber < out[j].SceneNumber })
	return out
}

// sortedShots returns shots ordered by ShotNumber, keeping input order on ties.
func sortedShots(shots []project.Shot) []project.Shot {
	out := append([]project.Shot(nil), shots...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ShotNumber < out[j].ShotNumber })
	return out
}

// expandScene walks every occurrence of a scene's playable shots starting at
// cursor and returns the advanced cursor.
func expandScene(scene project.Scene, shots []project.Shot, cursor float64, emit func(occurrence)) float64 {
	passes := project.EffectiveLoops(scene.LoopCount)
	for pass := 0; pass < passes; pass++ {
		for i, shot := range shots {
			loops := project.EffectiveLoops(shot.LoopCount)
			for k := 0; k < loops; k++ {
				if emit != nil {
					emit(occurrence{
						scene:     scene,
						shot:      shot,
						start:     cursor,
						shotIndex: i,
						lastShot:  i == len(shots)-1,
						lastLoop:  k == loops-1,
						lastPass:  pass == passes-1,
					})
				}
				cursor += shot.Duration
			}
		}
	}
	return cursor
}

// ComputeTotalDuration returns the expanded timeline length without building
// clips. It ignores versions, so for a project that passes validation it
// equals the TotalDuration reported by Compile.
func ComputeTotalDuration(scenes []project.Scene, shotsByScene map[string][]project.Shot) float64 {
	var cursor float64
	for _, scene := range sortedScenes(scenes) {
		cursor = expandScene(scene, timedShots(shotsByScene[scene.ID]), cursor, nil)
	}
	return cursor
}

// SceneSpan is the window a scene occupies on the expanded timeline, loops included.
type SceneSpan struct {
	SceneID string
	Start   float64
	Length  float64
}

// SceneSpans returns the window of every scene that contributes time, in play order.
func SceneSpans(scenes []project.Scene, shotsByScene map[string][]project.Shot) []SceneSpan {
	var (
		cursor float64
		spans  []SceneSpan
	)
	for _, scene := range sortedScenes(scenes) {
		start := cursor
		cursor = expandScene(scene, timedShots(shotsByScene[scene.ID]), cursor, nil)
		if cursor > start {
			spans = append(spans, SceneSpan{SceneID: scene.ID, Start: start, Length: cursor - start})
		}
	}
	return spans
}

func timedShots(shots []project.Shot) []project.Shot {
	sorted := sortedShots(shots)
	out := sorted[:0]
	for _, shot := range sorted {
		if shot.Duration > 0 {
			out = append(out, shot)
		}
	}
	return out
}
