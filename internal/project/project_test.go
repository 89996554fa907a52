package project_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storyreel/internal/project"
	"storyreel/internal/services"
	"storyreel/internal/testsupport"
)

func fixture() *project.Project {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &project.Project{
		ID: "proj-1",
		Scenes: []project.Scene{
			{ID: "s2", SceneNumber: 2, Title: "Outro"},
			{ID: "s1", SceneNumber: 1},
		},
		Shots: []project.Shot{
			{ID: "a", SceneID: "s1", ShotNumber: 1, Duration: 3},
			{ID: "b", SceneID: "s2", ShotNumber: 1, Duration: 2},
		},
		Versions: []project.ShotVersion{
			{ID: "a1", ShotID: "a", VideoURL: "https://cdn.example.com/a1.mp4", CreatedAt: base},
			{ID: "b1", ShotID: "b", VideoURL: "https://cdn.example.com/b1.mp4", CreatedAt: base},
		},
	}
}

func TestValidateAcceptsCompleteProject(t *testing.T) {
	if problems := project.Validate(fixture()); len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
	if err := project.Check(fixture()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestValidateReportsStructuralProblems(t *testing.T) {
	p := fixture()
	p.Scenes = append(p.Scenes, project.Scene{ID: "s3", SceneNumber: 3, Title: "Empty"})
	p.Shots = append(p.Shots,
		project.Shot{ID: "c", SceneID: "s1", ShotNumber: 2, Duration: 0},
		project.Shot{ID: "d", SceneID: "s2", ShotNumber: 2, Duration: 1},
	)
	p.Versions = append(p.Versions, project.ShotVersion{ID: "c1", ShotID: "c"})

	problems := project.Validate(p)
	want := []string{
		"scene 1 shot 2 has non-positive duration 0",
		"scene 1 shot 2 current version c1 has no video URL",
		"scene 2 (Outro) shot 2 has no rendered version",
		"scene 3 (Empty) has no shots",
	}
	if strings.Join(problems, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected problems:\n got %q\nwant %q", problems, want)
	}

	err := project.Check(p)
	var verr *project.ValidationError
	if !errors.As(err, &verr) || len(verr.Problems) != len(want) {
		t.Fatalf("expected ValidationError with %d problems, got %v", len(want), err)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestValidateNoScenes(t *testing.T) {
	problems := project.Validate(&project.Project{ID: "empty"})
	if len(problems) != 1 || problems[0] != "project has no scenes" {
		t.Fatalf("unexpected problems: %v", problems)
	}
}

func TestCurrentVersionResolution(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	versions := []project.ShotVersion{
		{ID: "v1", CreatedAt: base},
		{ID: "v3", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "v2", CreatedAt: base.Add(time.Minute)},
		{ID: "v4", CreatedAt: base.Add(2 * time.Minute)},
	}

	cases := []struct {
		name    string
		pointer string
		want    string
	}{
		{"explicit pointer", "v2", "v2"},
		{"latest with tie to later entry", "", "v4"},
		{"dangling pointer falls back", "missing", "v4"},
	}
	for _, tc := range cases {
		got, ok := project.CurrentVersion(project.Shot{CurrentVersionID: tc.pointer}, versions)
		if !ok || got.ID != tc.want {
			t.Fatalf("%s: expected %s, got %s (ok=%v)", tc.name, tc.want, got.ID, ok)
		}
	}
	if _, ok := project.CurrentVersion(project.Shot{}, nil); ok {
		t.Fatal("expected no version for empty list")
	}
}

func TestEffectiveLoops(t *testing.T) {
	for in, want := range map[int]int{-2: 1, 0: 1, 1: 1, 3: 3} {
		if got := project.EffectiveLoops(in); got != want {
			t.Fatalf("EffectiveLoops(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestLoadDefaultsVolumes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.json")
	testsupport.WriteJSON(t, path, fixture())

	p, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.ID != "proj-1" || len(p.Shots) != 2 {
		t.Fatalf("unexpected project: %+v", p)
	}
	if got := p.EffectiveVolumes(); got != project.DefaultVolumes() {
		t.Fatalf("expected default volumes, got %+v", got)
	}
}

func TestDecodePartialVolumesKeepsUnityGain(t *testing.T) {
	doc := `{"id":"p","scenes":[],"volumes":{"master":0.8,"music":0}}`
	p, err := project.Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	want := project.VolumeSettings{Master: 0.8, SFX: 1, Voiceover: 1, Music: 0, Ambient: 1}
	if got := p.EffectiveVolumes(); got != want {
		t.Fatalf("volumes = %+v, want %+v", got, want)
	}

	_, err = project.Decode(strings.NewReader(`{"id":"p","scenes":[],"volumes":{"mastr":1}}`))
	if err == nil || !strings.Contains(err.Error(), "mastr") {
		t.Fatalf("expected unknown volume field error, got %v", err)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := project.Decode(strings.NewReader(`{"id":"p","scenes":[],"shotz":[]}`))
	if err == nil || !strings.Contains(err.Error(), "shotz") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}
