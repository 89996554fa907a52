package edit_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"storyreel/internal/edit"
)

func sampleEdit() *edit.Edit {
	return &edit.Edit{
		Timeline: edit.Timeline{
			Background: "#000000",
			Cache:      true,
			Tracks: []edit.Track{
				{Clips: []edit.Clip{{
					Asset:      edit.VideoAsset{Src: "https://cdn.example.com/a.mp4", Volume: edit.Volume(0)},
					Start:      0,
					Length:     4,
					Transition: &edit.Transition{Out: edit.TransitionFade},
				}}},
				{Clips: []edit.Clip{{
					Asset:  edit.AudioAsset{Src: "https://cdn.example.com/music.mp3", Volume: edit.Volume(0.5), Effect: edit.AudioEffectFadeInFadeOut},
					Start:  0,
					Length: 4,
				}}},
			},
		},
		Output: edit.Output{Format: edit.FormatMP4, Resolution: edit.ResolutionHD, AspectRatio: edit.Aspect16x9, FPS: 25},
	}
}

func TestMarshalWireShape(t *testing.T) {
	data, err := json.Marshal(sampleEdit())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)
	for _, fragment := range []string{
		`"timeline":{"background":"#000000","tracks":[`,
		`"asset":{"type":"video","src":"https://cdn.example.com/a.mp4","volume":0}`,
		`"transition":{"out":"fade"}`,
		`"asset":{"type":"audio","src":"https://cdn.example.com/music.mp3","volume":0.5,"effect":"fadeInFadeOut"}`,
		`"cache":true`,
		`"output":{"format":"mp4","resolution":"hd","aspectRatio":"16:9","fps":25}`,
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected %s in %s", fragment, got)
		}
	}
	if strings.Contains(got, "callback") || strings.Contains(got, "thumbnail") {
		t.Fatalf("expected optional fields omitted, got %s", got)
	}
}

func TestDecodeRestoresAssetVariants(t *testing.T) {
	original := sampleEdit()
	original.Timeline.Tracks = append(original.Timeline.Tracks, edit.Track{Clips: []edit.Clip{
		{Asset: edit.TitleAsset{Text: "Chapter One", Style: "minimal"}, Start: 0, Length: 2},
		{Asset: edit.ImageAsset{Src: "https://cdn.example.com/still.png"}, Start: 2, Length: 2, Fit: edit.FitCover},
		{Asset: edit.HTMLAsset{HTML: "<p>hi</p>", Width: 400, Height: 200}, Start: 0, Length: 1},
		{Asset: edit.LumaAsset{Src: "https://cdn.example.com/luma.mp4"}, Start: 0, Length: 1},
	}})
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded edit.Edit
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(original, &decoded); diff != "" {
		t.Fatalf("decoded edit differs (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsUnknownAsset(t *testing.T) {
	var clip edit.Clip
	err := json.Unmarshal([]byte(`{"asset":{"type":"hologram","src":"x"},"start":0,"length":1}`), &clip)
	if !errors.Is(err, edit.ErrUnknownAsset) {
		t.Fatalf("expected ErrUnknownAsset, got %v", err)
	}
	if err := json.Unmarshal([]byte(`{"start":0,"length":1}`), &clip); err == nil {
		t.Fatal("expected error for clip without asset")
	}
}

func TestValidateReportsProblems(t *testing.T) {
	if err := sampleEdit().Validate(); err != nil {
		t.Fatalf("expected sample edit to validate, got %v", err)
	}

	bad := sampleEdit()
	bad.Timeline.Background = "black"
	bad.Timeline.Tracks[0].Clips[0].Length = 0
	bad.Timeline.Tracks[0].Clips[0].Transition = &edit.Transition{Out: "spiral"}
	bad.Timeline.Tracks[1].Clips[0].Asset = edit.AudioAsset{Volume: edit.Volume(-1)}
	bad.Timeline.Tracks = append(bad.Timeline.Tracks, edit.Track{})
	bad.Output.Format = "avi"
	bad.Output.FPS = 31

	err := bad.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, fragment := range []string{
		`background "black"`,
		"track 0 clip 0: length 0.000 must be positive",
		`unknown transition out "spiral"`,
		"audio asset: src is required",
		"audio asset: volume -1.000 is negative",
		"track 2 has no clips",
		`unknown format "avi"`,
		"unsupported fps 31",
	} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in %q", fragment, msg)
		}
	}
}

func TestEmptyTimelineRejected(t *testing.T) {
	e := &edit.Edit{Output: edit.Output{Format: edit.FormatMP4}}
	if err := e.Validate(); err == nil || !strings.Contains(err.Error(), "no tracks") {
		t.Fatalf("expected no tracks error, got %v", err)
	}
}

func TestClipCountAndDuration(t *testing.T) {
	e := sampleEdit()
	e.Timeline.Tracks[0].Clips = append(e.Timeline.Tracks[0].Clips, edit.Clip{
		Asset: edit.VideoAsset{Src: "https://cdn.example.com/b.mp4"}, Start: 4, Length: 3.5,
	})
	if got := e.ClipCount(); got != 3 {
		t.Fatalf("expected 3 clips, got %d", got)
	}
	if got := e.Duration(); got != 7.5 {
		t.Fatalf("expected duration 7.5, got %g", got)
	}
}

func TestFadeEffect(t *testing.T) {
	cases := []struct {
		in, out bool
		want    edit.AudioEffect
	}{
		{true, true, edit.AudioEffectFadeInFadeOut},
		{true, false, edit.AudioEffectFadeIn},
		{false, true, edit.AudioEffectFadeOut},
		{false, false, edit.AudioEffectNone},
	}
	for _, tc := range cases {
		if got := edit.FadeEffect(tc.in, tc.out); got != tc.want {
			t.Fatalf("FadeEffect(%v, %v) = %q, want %q", tc.in, tc.out, got, tc.want)
		}
	}
}
