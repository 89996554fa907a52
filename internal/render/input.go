package render

import (
	"fmt"

	"storyreel/internal/edit"
	"storyreel/internal/project"
	"storyreel/internal/services"
	"storyreel/internal/timeline"
)

// BuildInput assembles compiler input from a stored project. Per-scene
// voiceover clips become free-standing sound effects spanning their scene,
// rescaled so that the sound-effect gain path plays them at the voiceover
// category gain. When any per-scene clip is present the single voiceover
// bed is dropped.
func BuildInput(p *project.Project) (timeline.Input, []string) {
	in := timeline.InputFromProject(p)
	if len(p.VoiceoverClips) == 0 {
		return in, nil
	}

	var diagnostics []string
	in.Audio.Voiceover = nil
	in.SoundEffects = append([]project.SoundEffectItem(nil), p.SoundEffects...)

	vol := in.Volumes
	gain, ok := timeline.SFXGainFor(timeline.EffectiveGain(vol.Voiceover, vol.Master), vol.Master)
	if !ok {
		diagnostics = append(diagnostics, fmt.Sprintf("master volume %g is not positive; %d voiceover clips dropped", vol.Master, len(p.VoiceoverClips)))
		return in, diagnostics
	}
	if gain <= 0 {
		return in, diagnostics
	}

	spans := make(map[string]timeline.SceneSpan)
	for _, span := range timeline.SceneSpans(in.Scenes, in.ShotsByScene) {
		spans[span.SceneID] = span
	}
	for _, clip := range p.VoiceoverClips {
		if clip.URL == "" {
			diagnostics = append(diagnostics, fmt.Sprintf("voiceover clip for scene %s has no URL", clip.SceneID))
			continue
		}
		span, ok := spans[clip.SceneID]
		if !ok {
			diagnostics = append(diagnostics, fmt.Sprintf("voiceover clip for scene %s has no place on the timeline", clip.SceneID))
			continue
		}
		length := span.Length
		if clip.Duration > 0 && clip.Duration < length {
			length = clip.Duration
		}
		volume := gain
		in.SoundEffects = append(in.SoundEffects, project.SoundEffectItem{
			URL:    clip.URL,
			Start:  span.Start,
			Length: length,
			Volume: &volume,
		})
	}
	return in, diagnostics
}

// CompileOptions derives compiler options from configuration and the
// project's own output overrides.
func (m *Manager) CompileOptions(p *project.Project) timeline.Options {
	out := edit.Output{
		Format:      edit.Format(m.cfg.Render.Format),
		Resolution:  edit.Resolution(m.cfg.Render.Resolution),
		AspectRatio: edit.AspectRatio(m.cfg.Render.AspectRatio),
		FPS:         m.cfg.Render.FPS,
	}
	if o := p.Output; o != nil {
		if o.Format != "" {
			out.Format = o.Format
		}
		if o.Resolution != "" {
			out.Resolution = o.Resolution
		}
		if o.AspectRatio != "" {
			out.AspectRatio = o.AspectRatio
		}
		if o.FPS > 0 {
			out.FPS = o.FPS
		}
		if o.Thumbnail != nil {
			thumb := *o.Thumbnail
			out.Thumbnail = &thumb
		}
	}
	return timeline.Options{
		Output:         out,
		Background:     m.cfg.Render.Background,
		Cache:          m.cfg.Render.Cache,
		Callback:       m.cfg.Shotstack.CallbackURL,
		StrictVersions: m.cfg.Render.StrictVersions,
	}
}

// Compile validates the project and compiles it. Validation problems are
// returned as *project.ValidationError; compiler diagnostics, including
// those raised while assembling input, are carried on the result.
func (m *Manager) Compile(p *project.Project) (*timeline.Result, error) {
	if p == nil {
		return nil, services.Wrap(services.ErrValidation, "render", "compile", "project required", nil)
	}
	if err := project.Check(p); err != nil {
		return nil, err
	}
	in, diagnostics := BuildInput(p)
	res, err := timeline.Compile(in, m.CompileOptions(p))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "render", "compile", "project "+p.ID, err)
	}
	res.Diagnostics = append(diagnostics, res.Diagnostics...)
	return res, nil
}
