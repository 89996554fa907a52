package project

import (
	"bytes"
	"encoding/json"
	"time"

	"storyreel/internal/edit"
)

// Scene is an ordered group of shots. LoopCount repeats the whole shot
// sequence; values below 1 mean 1.
type Scene struct {
	ID          string `json:"id"`
	SceneNumber int    `json:"sceneNumber"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	LoopCount   int    `json:"loopCount,omitempty"`
}

// Shot is the smallest timed unit. Duration is in seconds. LoopCount repeats
// the shot before advancing; Transition applies when leaving the shot.
type Shot struct {
	ID               string  `json:"id"`
	SceneID          string  `json:"sceneId"`
	ShotNumber       int     `json:"shotNumber"`
	Duration         float64 `json:"duration"`
	LoopCount        int     `json:"loopCount,omitempty"`
	Transition       string  `json:"transition,omitempty"`
	SoundEffectURL   string  `json:"soundEffectUrl,omitempty"`
	CurrentVersionID string  `json:"currentVersionId,omitempty"`
}

// ShotVersion is one realized render of a shot.
type ShotVersion struct {
	ID        string    `json:"id"`
	ShotID    string    `json:"shotId"`
	VideoURL  string    `json:"videoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AudioTrackItem is a global audio bed spanning the whole timeline.
type AudioTrackItem struct {
	URL     string `json:"url"`
	FadeIn  bool   `json:"fadeIn,omitempty"`
	FadeOut bool   `json:"fadeOut,omitempty"`
}

// AudioBeds groups the three global beds. Nil means the bed is absent.
type AudioBeds struct {
	Voiceover *AudioTrackItem `json:"voiceover,omitempty"`
	Music     *AudioTrackItem `json:"music,omitempty"`
	Ambient   *AudioTrackItem `json:"ambient,omitempty"`
}

// VolumeSettings are per-category gain multipliers. The effective gain of a
// category is its value times Master.
type VolumeSettings struct {
	Master    float64 `json:"master"`
	SFX       float64 `json:"sfx"`
	Voiceover float64 `json:"voiceover"`
	Music     float64 `json:"music"`
	Ambient   float64 `json:"ambient"`
}

// DefaultVolumes returns unity gain for every category.
func DefaultVolumes() VolumeSettings {
	return VolumeSettings{Master: 1, SFX: 1, Voiceover: 1, Music: 1, Ambient: 1}
}

// UnmarshalJSON starts from DefaultVolumes, so a category left out of the
// document keeps unity gain. An explicit 0 still mutes it.
func (v *VolumeSettings) UnmarshalJSON(data []byte) error {
	type plain VolumeSettings
	decoded := plain(DefaultVolumes())
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&decoded); err != nil {
		return err
	}
	*v = VolumeSettings(decoded)
	return nil
}

// SoundEffectItem is a free-standing sound effect placed on the timeline
// independently of shots. Volume overrides the SFX category gain when set.
type SoundEffectItem struct {
	URL    string   `json:"url"`
	Start  float64  `json:"start"`
	Length float64  `json:"length"`
	Volume *float64 `json:"volume,omitempty"`
}

// VoiceoverClip is narration recorded for a single scene.
type VoiceoverClip struct {
	SceneID  string  `json:"sceneId"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration,omitempty"`
}

// OutputSettings optionally override the configured render output.
type OutputSettings struct {
	Format      edit.Format      `json:"format,omitempty"`
	Resolution  edit.Resolution  `json:"resolution,omitempty"`
	AspectRatio edit.AspectRatio `json:"aspectRatio,omitempty"`
	FPS         float64          `json:"fps,omitempty"`
	Thumbnail   *edit.Thumbnail  `json:"thumbnail,omitempty"`
}

// Project is a stored video project document.
type Project struct {
	ID             string            `json:"id"`
	Title          string            `json:"title,omitempty"`
	Scenes         []Scene           `json:"scenes"`
	Shots          []Shot            `json:"shots"`
	Versions       []ShotVersion     `json:"versions"`
	Audio          AudioBeds         `json:"audio"`
	Volumes        *VolumeSettings   `json:"volumes,omitempty"`
	SoundEffects   []SoundEffectItem `json:"soundEffects,omitempty"`
	VoiceoverClips []VoiceoverClip   `json:"voiceoverClips,omitempty"`
	Output         *OutputSettings   `json:"output,omitempty"`
}

// EffectiveLoops treats zero or negative loop counts as a single pass.
func EffectiveLoops(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// EffectiveVolumes returns the project's volumes, or unity gain when unset.
func (p *Project) EffectiveVolumes() VolumeSettings {
	if p == nil || p.Volumes == nil {
		return DefaultVolumes()
	}
	return *p.Volumes
}

// ShotsByScene groups shots under their parent scene id, preserving input order.
func (p *Project) ShotsByScene() map[string][]Shot {
	out := make(map[string][]Shot, len(p.Scenes))
	for _, shot := range p.Shots {
		out[shot.SceneID] = append(out[shot.SceneID], shot)
	}
	return out
}

// VersionsByShot groups versions under their parent shot id, preserving input order.
func (p *Project) VersionsByShot() map[string][]ShotVersion {
	out := make(map[string][]ShotVersion, len(p.Shots))
	for _, version := range p.Versions {
		out[version.ShotID] = append(out[version.ShotID], version)
	}
	return out
}

// CurrentVersion resolves the version used at compile time: the explicit
// pointer when it matches, otherwise the latest by CreatedAt with ties going
// to the later entry.
func CurrentVersion(shot Shot, versions []ShotVersion) (ShotVersion, bool) {
	if shot.CurrentVersionID != "" {
		for _, v := range versions {
			if v.ID == shot.CurrentVersionID {
				return v, true
			}
		}
	}
	var (
		latest ShotVersion
		found  bool
	)
	for _, v := range versions {
		if !found || !v.CreatedAt.Before(latest.CreatedAt) {
			latest = v
			found = true
		}
	}
	return latest, found
}
