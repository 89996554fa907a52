package edit

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Edit is the document submitted to the rendering engine.
type Edit struct {
	Timeline Timeline `json:"timeline"`
	Output   Output   `json:"output"`
	Callback string   `json:"callback,omitempty"`
}

// Timeline holds the ordered tracks. The first track is the top layer.
type Timeline struct {
	Soundtrack *Soundtrack `json:"soundtrack,omitempty"`
	Background string      `json:"background,omitempty"`
	Tracks     []Track     `json:"tracks"`
	Cache      bool        `json:"cache"`
}

// Soundtrack is a single audio file played under the whole timeline.
type Soundtrack struct {
	Src    string      `json:"src"`
	Effect AudioEffect `json:"effect,omitempty"`
	Volume *float64    `json:"volume,omitempty"`
}

// Track is an ordered layer of clips.
type Track struct {
	Clips []Clip `json:"clips"`
}

// Output describes the rendered file.
type Output struct {
	Format      Format      `json:"format"`
	Resolution  Resolution  `json:"resolution,omitempty"`
	AspectRatio AspectRatio `json:"aspectRatio,omitempty"`
	FPS         float64     `json:"fps,omitempty"`
	Thumbnail   *Thumbnail  `json:"thumbnail,omitempty"`
}

// Thumbnail requests a still captured at Capture seconds, scaled by Scale.
type Thumbnail struct {
	Capture float64 `json:"capture"`
	Scale   float64 `json:"scale"`
}

var hexColour = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ClipCount returns the number of clips across every track.
func (e *Edit) ClipCount() int {
	if e == nil {
		return 0
	}
	total := 0
	for _, track := range e.Timeline.Tracks {
		total += len(track.Clips)
	}
	return total
}

// Duration returns the end of the latest clip on the timeline.
func (e *Edit) Duration() float64 {
	if e == nil {
		return 0
	}
	var end float64
	for _, track := range e.Timeline.Tracks {
		for _, clip := range track.Clips {
			if clipEnd := clip.End(); clipEnd > end {
				end = clipEnd
			}
		}
	}
	return end
}

// Validate checks the document structure before submission.
func (e *Edit) Validate() error {
	if e == nil {
		return errors.New("edit is nil")
	}
	var problems []string
	if len(e.Timeline.Tracks) == 0 {
		problems = append(problems, "timeline has no tracks")
	}
	if bg := e.Timeline.Background; bg != "" && !hexColour.MatchString(bg) {
		problems = append(problems, fmt.Sprintf("background %q is not a hex colour", bg))
	}
	if st := e.Timeline.Soundtrack; st != nil {
		if strings.TrimSpace(st.Src) == "" {
			problems = append(problems, "soundtrack src is required")
		}
		if !st.Effect.Valid() {
			problems = append(problems, fmt.Sprintf("soundtrack: unknown audio effect %q", st.Effect))
		}
	}
	for ti, track := range e.Timeline.Tracks {
		if len(track.Clips) == 0 {
			problems = append(problems, fmt.Sprintf("track %d has no clips", ti))
			continue
		}
		for ci, clip := range track.Clips {
			for _, p := range clip.validate() {
				problems = append(problems, fmt.Sprintf("track %d clip %d: %s", ti, ci, p))
			}
		}
	}
	if err := e.Output.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid edit: %s", strings.Join(problems, "; "))
}

// Validate checks output settings against the engine's enumerations.
func (o Output) Validate() error {
	var problems []string
	if !o.Format.Valid() {
		problems = append(problems, fmt.Sprintf("unknown format %q", o.Format))
	}
	if !o.Resolution.Valid() {
		problems = append(problems, fmt.Sprintf("unknown resolution %q", o.Resolution))
	}
	if !o.AspectRatio.Valid() {
		problems = append(problems, fmt.Sprintf("unknown aspect ratio %q", o.AspectRatio))
	}
	if !ValidFPS(o.FPS) {
		problems = append(problems, fmt.Sprintf("unsupported fps %g", o.FPS))
	}
	if t := o.Thumbnail; t != nil {
		if t.Capture < 0 {
			problems = append(problems, "thumbnail capture is negative")
		}
		if t.Scale <= 0 || t.Scale > 1 {
			problems = append(problems, fmt.Sprintf("thumbnail scale %g outside (0, 1]", t.Scale))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("output: %s", strings.Join(problems, ", "))
}
