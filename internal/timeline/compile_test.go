package timeline_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"storyreel/internal/edit"
	"storyreel/internal/project"
	"storyreel/internal/timeline"
)

// builder assembles compiler input with one current version per shot.
type builder struct {
	in timeline.Input
}

func newBuilder() *builder {
	return &builder{in: timeline.Input{
		ShotsByScene:   map[string][]project.Shot{},
		VersionsByShot: map[string][]project.ShotVersion{},
		Volumes:        project.DefaultVolumes(),
	}}
}

func (b *builder) scene(id string, number, loops int) *builder {
	b.in.Scenes = append(b.in.Scenes, project.Scene{ID: id, SceneNumber: number, LoopCount: loops})
	return b
}

func (b *builder) shot(sceneID string, shot project.Shot) *builder {
	shot.SceneID = sceneID
	b.in.ShotsByScene[sceneID] = append(b.in.ShotsByScene[sceneID], shot)
	b.in.VersionsByShot[shot.ID] = append(b.in.VersionsByShot[shot.ID], project.ShotVersion{
		ID:        shot.ID + "-v1",
		ShotID:    shot.ID,
		VideoURL:  "https://cdn.example.com/" + shot.ID + ".mp4",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	return b
}

func mustCompile(t *testing.T, in timeline.Input, opts timeline.Options) *timeline.Result {
	t.Helper()
	res, err := timeline.Compile(in, opts)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if err := res.Edit.Validate(); err != nil {
		t.Fatalf("compiled edit failed validation: %v", err)
	}
	return res
}

func videoSources(res *timeline.Result) []string {
	var out []string
	for _, clip := range res.Edit.Timeline.Tracks[0].Clips {
		src := clip.Asset.(edit.VideoAsset).Src
		out = append(out, strings.TrimSuffix(strings.TrimPrefix(src, "https://cdn.example.com/"), ".mp4"))
	}
	return out
}

func audioVolume(t *testing.T, clip edit.Clip) float64 {
	t.Helper()
	asset, ok := clip.Asset.(edit.AudioAsset)
	if !ok || asset.Volume == nil {
		t.Fatalf("expected audio asset with volume, got %#v", clip.Asset)
	}
	return *asset.Volume
}

func TestLoopNestingOrder(t *testing.T) {
	in := newBuilder().
		scene("s1", 1, 2).
		shot("s1", project.Shot{ID: "A", ShotNumber: 1, Duration: 2, LoopCount: 2}).
		shot("s1", project.Shot{ID: "B", ShotNumber: 2, Duration: 3}).
		in

	res := mustCompile(t, in, timeline.Options{})
	want := []string{"A", "A", "B", "A", "A", "B"}
	if diff := cmp.Diff(want, videoSources(res)); diff != "" {
		t.Fatalf("unexpected shot order (-want +got):\n%s", diff)
	}

	var starts []float64
	for _, clip := range res.Edit.Timeline.Tracks[0].Clips {
		starts = append(starts, clip.Start)
	}
	if diff := cmp.Diff([]float64{0, 2, 4, 7, 9, 11}, starts); diff != "" {
		t.Fatalf("unexpected clip starts (-want +got):\n%s", diff)
	}
	if res.TotalDuration != 14 || res.ClipCount != 6 {
		t.Fatalf("unexpected totals: duration=%g clips=%d", res.TotalDuration, res.ClipCount)
	}
}

func TestDurationAdditivity(t *testing.T) {
	durations := []float64{1.5, 2.25, 0.75, 3}
	for sceneLoops := 1; sceneLoops <= 3; sceneLoops++ {
		for shotLoops := 1; shotLoops <= 3; shotLoops++ {
			for shotCount := 1; shotCount <= 4; shotCount++ {
				name := fmt.Sprintf("scene%d_shot%d_count%d", sceneLoops, shotLoops, shotCount)
				t.Run(name, func(t *testing.T) {
					b := newBuilder().scene("s1", 1, sceneLoops).scene("s2", 2, 1)
					for i := 0; i < shotCount; i++ {
						b.shot("s1", project.Shot{ID: fmt.Sprintf("a%d", i), ShotNumber: i + 1, Duration: durations[i], LoopCount: shotLoops})
					}
					b.shot("s2", project.Shot{ID: "tail", ShotNumber: 1, Duration: 1})

					var want float64
					for pass := 0; pass < sceneLoops; pass++ {
						for i := 0; i < shotCount; i++ {
							for k := 0; k < shotLoops; k++ {
								want += durations[i]
							}
						}
					}
					want++

					if got := timeline.ComputeTotalDuration(b.in.Scenes, b.in.ShotsByScene); got != want {
						t.Fatalf("ComputeTotalDuration = %g, want %g", got, want)
					}
					res := mustCompile(t, b.in, timeline.Options{})
					if res.TotalDuration != want {
						t.Fatalf("Compile TotalDuration = %g, want %g", res.TotalDuration, want)
					}
					wantClips := sceneLoops*shotCount*shotLoops + 1
					if res.ClipCount != wantClips {
						t.Fatalf("ClipCount = %d, want %d", res.ClipCount, wantClips)
					}
				})
			}
		}
	}
}

func TestZeroGainTracksOmitted(t *testing.T) {
	b := newBuilder().scene("s1", 1, 1).
		shot("s1", project.Shot{ID: "A", ShotNumber: 1, Duration: 4, SoundEffectURL: "https://cdn.example.com/whoosh.mp3"}).
		shot("s1", project.Shot{ID: "B", ShotNumber: 2, Duration: 2, SoundEffectURL: "https://cdn.example.com/thud.mp3"})
	b.in.Volumes = project.VolumeSettings{Master: 1, SFX: 0, Voiceover: 0.5, Music: 0, Ambient: 0}
	b.in.Audio = project.AudioBeds{
		Voiceover: &project.AudioTrackItem{URL: "https://cdn.example.com/vo.mp3"},
		Music:     &project.AudioTrackItem{URL: "https://cdn.example.com/music.mp3"},
		Ambient:   &project.AudioTrackItem{URL: "https://cdn.example.com/rain.mp3"},
	}

	res := mustCompile(t, b.in, timeline.Options{})
	tracks := res.Edit.Timeline.Tracks
	if len(tracks) != 2 {
		t.Fatalf("expected video and voiceover tracks only, got %d tracks", len(tracks))
	}
	vo := tracks[1].Clips
	if len(vo) != 1 {
		t.Fatalf("expected single voiceover clip, got %d", len(vo))
	}
	if got := audioVolume(t, vo[0]); got != 0.5 {
		t.Fatalf("expected voiceover gain 0.5, got %g", got)
	}
	if src := vo[0].Asset.(edit.AudioAsset).Src; src != "https://cdn.example.com/vo.mp3" {
		t.Fatalf("unexpected voiceover src %q", src)
	}
	if vo[0].Start != 0 || vo[0].Length != 6 {
		t.Fatalf("expected voiceover to span [0,6), got start=%g length=%g", vo[0].Start, vo[0].Length)
	}
	data, _ := json.Marshal(res.Edit)
	for _, absent := range []string{"music.mp3", "rain.mp3", "whoosh.mp3", "thud.mp3"} {
		if bytes.Contains(data, []byte(absent)) {
			t.Fatalf("expected %s to be omitted, document: %s", absent, data)
		}
	}
}

func TestTrackOrderAndGains(t *testing.T) {
	b := newBuilder().scene("s1", 1, 1).
		shot("s1", project.Shot{ID: "A", ShotNumber: 1, Duration: 4, SoundEffectURL: "https://cdn.example.com/whoosh.mp3"})
	b.in.Volumes = project.VolumeSettings{Master: 0.5, SFX: 0.8, Voiceover: 1, Music: 0.4, Ambient: 0.2}
	b.in.Audio = project.AudioBeds{
		Voiceover: &project.AudioTrackItem{URL: "https://cdn.example.com/vo.mp3"},
		Music:     &project.AudioTrackItem{URL: "https://cdn.example.com/music.mp3", FadeIn: true, FadeOut: true},
		Ambient:   &project.AudioTrackItem{URL: "https://cdn.example.com/rain.mp3", FadeOut: true},
	}
	b.in.SoundEffects = []project.SoundEffectItem{
		{URL: "https://cdn.example.com/ding.mp3", Start: 1, Length: 0.5},
		{URL: "https://cdn.example.com/muted.mp3", Start: 2, Length: 0.5, Volume: edit.Volume(0)},
	}

	res := mustCompile(t, b.in, timeline.Options{})
	tracks := res.Edit.Timeline.Tracks
	if len(tracks) != 6 {
		t.Fatalf("expected 6 tracks, got %d", len(tracks))
	}

	video := tracks[0].Clips[0].Asset.(edit.VideoAsset)
	if video.Volume == nil || *video.Volume != 0 {
		t.Fatalf("expected muted video clip, got %#v", video.Volume)
	}

	type want struct {
		src    string
		gain   float64
		effect edit.AudioEffect
	}
	expect := []want{
		{"https://cdn.example.com/whoosh.mp3", 0.4, ""},
		{"https://cdn.example.com/ding.mp3", 0.4, ""},
		{"https://cdn.example.com/vo.mp3", 0.5, ""},
		{"https://cdn.example.com/music.mp3", 0.2, edit.AudioEffectFadeInFadeOut},
		{"https://cdn.example.com/rain.mp3", 0.1, edit.AudioEffectFadeOut},
	}
	for i, w := range expect {
		clips := tracks[i+1].Clips
		if len(clips) != 1 {
			t.Fatalf("track %d: expected 1 clip, got %d", i+1, len(clips))
		}
		asset := clips[0].Asset.(edit.AudioAsset)
		if asset.Src != w.src || *asset.Volume != w.gain || asset.Effect != w.effect {
			t.Fatalf("track %d: got src=%s gain=%g effect=%q, want %+v", i+1, asset.Src, *asset.Volume, asset.Effect, w)
		}
	}
	if res.ClipCount != 6 {
		t.Fatalf("expected 6 clips, got %d", res.ClipCount)
	}
}

func TestTransitionPlacement(t *testing.T) {
	in := newBuilder().scene("s1", 1, 1).
		shot("s1", project.Shot{ID: "A", ShotNumber: 1, Duration: 2, Transition: "wipe"}).
		shot("s1", project.Shot{ID: "B", ShotNumber: 2, Duration: 2, Transition: "fade"}).
		shot("s1", project.Shot{ID: "C", ShotNumber: 3, Duration: 2, Transition: "cut"}).
		in

	res := mustCompile(t, in, timeline.Options{})
	clips := res.Edit.Timeline.Tracks[0].Clips
	var got []*edit.Transition
	count := 0
	for _, clip := range clips {
		got = append(got, clip.Transition)
		if clip.Transition != nil {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 transitions, got %d", count)
	}
	want := []*edit.Transition{
		{Out: edit.TransitionWipeRight},
		{Out: edit.TransitionFade},
		nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected transitions (-want +got):\n%s", diff)
	}
}

func TestTransitionOnlyOnLastShotLoop(t *testing.T) {
	in := newBuilder().scene("s1", 1, 2).
		shot("s1", project.Shot{ID: "A", ShotNumber: 1, Duration: 1, LoopCount: 2, Transition: "slideLeft"}).
		shot("s1", project.Shot{ID: "B", ShotNumber: 2, Duration: 1, Transition: "zoom"}).
		scene("s2", 2, 1).
		shot("s2", project.Shot{ID: "C", ShotNumber: 1, Duration: 1}).
		in

	res := mustCompile(t, in, timeline.Options{})
	var got []edit.TransitionEffect
	for _, clip := range res.Edit.Timeline.Tracks[0].Clips {
		if clip.Transition == nil {
			got = append(got, "")
			continue
		}
		got = append(got, clip.Transition.Out)
	}
	// A A B | A A B | C: B's own zoom is ignored on pass ends; only a scene replay fades.
	want := []edit.TransitionEffect{"", "slideLeft", "fade", "", "slideLeft", "", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected transitions (-want +got):\n%s", diff)
	}
}

func TestUnknownTransitionFallsBackToFade(t *testing.T) {
	in := newBuilder().scene("s1", 1, 2).
		shot("s1", project.Shot{ID: "A", ShotNumber: 1, Duration: 1, Transition: "spiral"}).
		shot("s1", project.Shot{ID: "B", ShotNumber: 2, Duration: 1}).
		in

	res := mustCompile(t, in, timeline.Options{})
	if tr := res.Edit.Timeline.Tracks[0].Clips[0].Transition; tr == nil || tr.Out != edit.TransitionFade {
		t.Fatalf("expected fade fallback, got %#v", tr)
	}
	if len(res.Diagnostics) != 1 || !strings.Contains(res.Diagnostics[0], `unknown transition "spiral"`) {
		t.Fatalf("expected one diagnostic for unknown transition, got %v", res.Diagnostics)
	}
}

func TestIdempotentCompile(t *testing.T) {
	b := newBuilder().scene("s2", 2, 2).scene("s1", 1, 1).
		shot("s1", project.Shot{ID: "A", ShotNumber: 1, Duration: 1.25, Transition: "reveal", SoundEffectURL: "https://cdn.example.com/a.mp3"}).
		shot("s1", project.Shot{ID: "B", ShotNumber: 2, Duration: 2}).
		shot("s2", project.Shot{ID: "C", ShotNumber: 1, Duration: 3, LoopCount: 2})
	b.in.Audio.Music = &project.AudioTrackItem{URL: "https://cdn.example.com/music.mp3", FadeIn: true}
	opts := timeline.Options{Cache: true, Callback: "https://hooks.example.com/render"}

	first, err := json.Marshal(mustCompile(t, b.in, opts).Edit)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(mustCompile(t, b.in, opts).Edit)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("compile is not deterministic:\n%s\n%s", first, second)
	}
}

func TestVoiceoverGainRescale(t *testing.T) {
	gain, ok := timeline.SFXGainFor(0.4, 0.5)
	if !ok {
		t.Fatal("expected rescale to succeed")
	}
	if gain != 0.8 {
		t.Fatalf("expected rescaled gain 0.8, got %g", gain)
	}
	if back := timeline.EffectiveGain(gain, 0.5); back != 0.4 {
		t.Fatalf("expected composed gain 0.4, got %g", back)
	}
	if _, ok := timeline.SFXGainFor(0.4, 0); ok {
		t.Fatal("expected rescale to fail for zero master")
	}

	b := newBuilder().scene("s1", 1, 1).
		shot("s1", project.Shot{ID: "A", ShotNumber: 1, Duration: 5})
	b.in.Volumes = project.VolumeSettings{Master: 0.5, SFX: 1, Voiceover: 0.8}
	b.in.SoundEffects = []project.SoundEffectItem{{URL: "https://cdn.example.com/vo-s1.mp3", Start: 0, Length: 5, Volume: &gain}}

	res := mustCompile(t, b.in, timeline.Options{})
	tracks := res.Edit.Timeline.Tracks
	if len(tracks) != 2 {
		t.Fatalf("expected video and sfx tracks, got %d", len(tracks))
	}
	if got := audioVolume(t, tracks[1].Clips[0]); got != 0.4 {
		t.Fatalf("expected wire gain 0.4, got %g", got)
	}
}

func TestMissingVersionHandling(t *testing.T) {
	b := newBuilder().scene("s1", 1, 1).scene("s2", 2, 1).
		shot("s1", project.Shot{ID: "A", ShotNumber: 1, Duration: 2}).
		shot("s1", project.Shot{ID: "B", ShotNumber: 2, Duration: 3})
	b.in.VersionsByShot["B"] = nil

	res := mustCompile(t, b.in, timeline.Options{})
	if diff := cmp.Diff([]string{"A"}, videoSources(res)); diff != "" {
		t.Fatalf("unexpected shots (-want +got):\n%s", diff)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("expected diagnostics for missing version and empty scene, got %v", res.Diagnostics)
	}

	if _, err := timeline.Compile(b.in, timeline.Options{StrictVersions: true}); err == nil {
		t.Fatal("expected strict compile to fail")
	}
}

func TestEmptyTimeline(t *testing.T) {
	in := newBuilder().scene("s1", 1, 1).in
	if _, err := timeline.Compile(in, timeline.Options{}); !errors.Is(err, timeline.ErrEmptyTimeline) {
		t.Fatalf("expected ErrEmptyTimeline, got %v", err)
	}
}

func TestOutputDefaults(t *testing.T) {
	in := newBuilder().scene("s1", 1, 1).shot("s1", project.Shot{ID: "A", ShotNumber: 1, Duration: 1}).in

	res := mustCompile(t, in, timeline.Options{})
	want := edit.Output{Format: edit.FormatMP4, Resolution: edit.ResolutionHD, AspectRatio: edit.Aspect16x9, FPS: 25}
	if diff := cmp.Diff(want, res.Edit.Output); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
	if res.Edit.Timeline.Background != "#000000" {
		t.Fatalf("unexpected background %q", res.Edit.Timeline.Background)
	}

	custom := mustCompile(t, in, timeline.Options{
		Output:     edit.Output{Format: edit.FormatGIF, Resolution: edit.ResolutionPreview, AspectRatio: edit.Aspect1x1, FPS: 12, Thumbnail: &edit.Thumbnail{Capture: 0.5, Scale: 0.3}},
		Background: "#ffffff",
	})
	if custom.Edit.Output.Format != edit.FormatGIF || custom.Edit.Output.Thumbnail == nil {
		t.Fatalf("expected custom output to pass through, got %+v", custom.Edit.Output)
	}
}

func TestSceneSpans(t *testing.T) {
	in := newBuilder().
		scene("s1", 1, 2).shot("s1", project.Shot{ID: "A", ShotNumber: 1, Duration: 2}).
		scene("empty", 2, 1).
		scene("s3", 3, 1).shot("s3", project.Shot{ID: "B", ShotNumber: 1, Duration: 1.5, LoopCount: 2}).
		in

	got := timeline.SceneSpans(in.Scenes, in.ShotsByScene)
	want := []timeline.SceneSpan{
		{SceneID: "s1", Start: 0, Length: 4},
		{SceneID: "s3", Start: 4, Length: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected spans (-want +got):\n%s", diff)
	}
}
