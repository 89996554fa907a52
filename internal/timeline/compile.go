package timeline

import (
	"errors"
	"fmt"
	"strings"

	"storyreel/internal/edit"
	"storyreel/internal/project"
)

// Output defaults applied when Options.Output leaves a field empty.
const (
	DefaultFormat      = edit.FormatMP4
	DefaultResolution  = edit.ResolutionHD
	DefaultAspectRatio = edit.Aspect16x9
	DefaultFPS         = 25
	DefaultBackground  = "#000000"
)

// ErrEmptyTimeline is returned when no shot produced a clip.
var ErrEmptyTimeline = errors.New("timeline has no playable shots")

// Input is everything the compiler reads.
type Input struct {
	Scenes         []project.Scene
	ShotsByScene   map[string][]project.Shot
	VersionsByShot map[string][]project.ShotVersion
	Volumes        project.VolumeSettings
	Audio          project.AudioBeds
	SoundEffects   []project.SoundEffectItem
}

// Options controls document-level settings.
type Options struct {
	Output     edit.Output
	Background string
	Cache      bool
	Callback   string
	// StrictVersions turns a shot without a resolvable video into an error
	// instead of a skipped shot with a diagnostic.
	StrictVersions bool
}

// Result is a compiled document and its derived totals.
type Result struct {
	Edit          *edit.Edit
	TotalDuration float64
	ClipCount     int
	Diagnostics   []string
}

// InputFromProject groups a stored project into compiler input.
func InputFromProject(p *project.Project) Input {
	return Input{
		Scenes:         p.Scenes,
		ShotsByScene:   p.ShotsByScene(),
		VersionsByShot: p.VersionsByShot(),
		Volumes:        p.EffectiveVolumes(),
		Audio:          p.Audio,
		SoundEffects:   p.SoundEffects,
	}
}

type playableShot struct {
	project.Shot
	videoURL string
}

type compiler struct {
	in          Input
	opts        Options
	video       []edit.Clip
	shotSFX     []edit.Clip
	diagnostics []string
	warned      map[string]struct{}
}

// Compile expands the input into an edit document.
func Compile(in Input, opts Options) (*Result, error) {
	c := &compiler{in: in, opts: opts, warned: make(map[string]struct{})}

	var cursor float64
	for _, scene := range sortedScenes(in.Scenes) {
		shots, err := c.playable(scene)
		if err != nil {
			return nil, err
		}
		if len(shots) == 0 {
			continue
		}
		plain := make([]project.Shot, len(shots))
		urls := make(map[string]string, len(shots))
		for i, s := range shots {
			plain[i] = s.Shot
			urls[s.ID] = s.videoURL
		}
		cursor = expandScene(scene, plain, cursor, func(o occurrence) {
			c.emitShot(o, urls[o.shot.ID])
		})
	}

	if len(c.video) == 0 {
		return nil, ErrEmptyTimeline
	}
	total := cursor

	tracks := []edit.Track{{Clips: c.video}}
	if len(c.shotSFX) > 0 {
		tracks = append(tracks, edit.Track{Clips: c.shotSFX})
	}
	if clips := c.looseSFX(); len(clips) > 0 {
		tracks = append(tracks, edit.Track{Clips: clips})
	}
	vol := in.Volumes
	beds := []struct {
		name string
		item *project.AudioTrackItem
		gain float64
	}{
		{"voiceover", in.Audio.Voiceover, vol.Voiceover},
		{"music", in.Audio.Music, vol.Music},
		{"ambient", in.Audio.Ambient, vol.Ambient},
	}
	for _, bed := range beds {
		if clip, ok := bedClip(bed.item, EffectiveGain(bed.gain, vol.Master), total); ok {
			tracks = append(tracks, edit.Track{Clips: []edit.Clip{clip}})
		}
	}

	doc := &edit.Edit{
		Timeline: edit.Timeline{
			Background: c.background(),
			Tracks:     tracks,
			Cache:      opts.Cache,
		},
		Output:   outputWithDefaults(opts.Output),
		Callback: strings.TrimSpace(opts.Callback),
	}
	return &Result{
		Edit:          doc,
		TotalDuration: total,
		ClipCount:     doc.ClipCount(),
		Diagnostics:   c.diagnostics,
	}, nil
}

// playable resolves the ordered shots of a scene that can be placed on the timeline.
func (c *compiler) playable(scene project.Scene) ([]playableShot, error) {
	shots := sortedShots(c.in.ShotsByScene[scene.ID])
	if len(shots) == 0 {
		c.diag("scene %d (%s) has no shots; skipped", scene.SceneNumber, scene.ID)
		return nil, nil
	}
	out := make([]playableShot, 0, len(shots))
	for _, shot := range shots {
		if shot.Duration <= 0 {
			c.diag("scene %d shot %d has non-positive duration %g; skipped", scene.SceneNumber, shot.ShotNumber, shot.Duration)
			continue
		}
		version, ok := project.CurrentVersion(shot, c.in.VersionsByShot[shot.ID])
		url := strings.TrimSpace(version.VideoURL)
		if !ok || url == "" {
			if c.opts.StrictVersions {
				return nil, fmt.Errorf("scene %d shot %d (%s) has no resolvable video", scene.SceneNumber, shot.ShotNumber, shot.ID)
			}
			c.diag("scene %d shot %d (%s) has no resolvable video; skipped", scene.SceneNumber, shot.ShotNumber, shot.ID)
			continue
		}
		out = append(out, playableShot{Shot: shot, videoURL: url})
	}
	if len(out) == 0 {
		c.diag("scene %d (%s) has no playable shots; skipped", scene.SceneNumber, scene.ID)
	}
	return out, nil
}

func (c *compiler) emitShot(o occurrence, videoURL string) {
	clip := edit.Clip{
		Asset:  edit.VideoAsset{Src: videoURL, Volume: edit.Volume(0)},
		Start:  o.start,
		Length: o.shot.Duration,
	}
	if o.lastLoop {
		clip.Transition = c.transitionOut(o)
	}
	c.video = append(c.video, clip)

	if url := strings.TrimSpace(o.shot.SoundEffectURL); url != "" {
		gain := EffectiveGain(c.in.Volumes.SFX, c.in.Volumes.Master)
		if gain > 0 {
			c.shotSFX = append(c.shotSFX, edit.Clip{
				Asset:  edit.AudioAsset{Src: url, Volume: edit.Volume(gain)},
				Start:  o.start,
				Length: o.shot.Duration,
			})
		}
	}
}

// transitionOut picks the transition leaving the last repetition of a shot:
// the shot's own transition before the next shot in the pass, or a fade when
// the pass ends and another scene loop follows.
func (c *compiler) transitionOut(o occurrence) *edit.Transition {
	if !o.lastShot {
		effect, kind := edit.ParseTransition(o.shot.Transition)
		switch kind {
		case edit.TransitionNone:
			return nil
		case edit.TransitionUnknown:
			key := "transition:" + o.shot.ID
			if _, seen := c.warned[key]; !seen {
				c.warned[key] = struct{}{}
				c.diag("scene %d shot %d: unknown transition %q replaced with %s",
					o.scene.SceneNumber, o.shot.ShotNumber, o.shot.Transition, effect)
			}
		}
		return &edit.Transition{Out: effect}
	}
	if !o.lastPass {
		return &edit.Transition{Out: edit.TransitionFade}
	}
	return nil
}

func (c *compiler) looseSFX() []edit.Clip {
	vol := c.in.Volumes
	var clips []edit.Clip
	for i, item := range c.in.SoundEffects {
		url := strings.TrimSpace(item.URL)
		if url == "" || item.Length <= 0 || item.Start < 0 {
			c.diag("sound effect %d has no url or an invalid window; skipped", i)
			continue
		}
		category := vol.SFX
		if item.Volume != nil {
			category = *item.Volume
		}
		gain := EffectiveGain(category, vol.Master)
		if gain <= 0 {
			continue
		}
		clips = append(clips, edit.Clip{
			Asset:  edit.AudioAsset{Src: url, Volume: edit.Volume(gain)},
			Start:  item.Start,
			Length: item.Length,
		})
	}
	return clips
}

func bedClip(item *project.AudioTrackItem, gain, total float64) (edit.Clip, bool) {
	if item == nil || strings.TrimSpace(item.URL) == "" || gain <= 0 || total <= 0 {
		return edit.Clip{}, false
	}
	return edit.Clip{
		Asset: edit.AudioAsset{
			Src:    strings.TrimSpace(item.URL),
			Volume: edit.Volume(gain),
			Effect: edit.FadeEffect(item.FadeIn, item.FadeOut),
		},
		Start:  0,
		Length: total,
	}, true
}

func (c *compiler) background() string {
	if bg := strings.TrimSpace(c.opts.Background); bg != "" {
		return bg
	}
	return DefaultBackground
}

func (c *compiler) diag(format string, args ...any) {
	c.diagnostics = append(c.diagnostics, fmt.Sprintf(format, args...))
}

func outputWithDefaults(out edit.Output) edit.Output {
	if out.Format == "" {
		out.Format = DefaultFormat
	}
	if out.Resolution == "" {
		out.Resolution = DefaultResolution
	}
	if out.AspectRatio == "" {
		out.AspectRatio = DefaultAspectRatio
	}
	if out.FPS == 0 {
		out.FPS = DefaultFPS
	}
	return out
}
