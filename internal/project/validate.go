package project

import (
	"fmt"
	"sort"
	"strings"

	"storyreel/internal/services"
)

// ValidationError carries every pre-flight problem found in a project.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "project validation failed"
	}
	return fmt.Sprintf("project validation failed: %s", strings.Join(e.Problems, "; "))
}

// Is lets errors.Is match the shared validation marker.
func (e *ValidationError) Is(target error) bool {
	return target == services.ErrValidation
}

// ErrorKind classifies the error for presentation.
func (e *ValidationError) ErrorKind() string {
	return "validation"
}

// Validate returns human-readable structural problems. It performs no time
// arithmetic. An empty result means the project may be compiled.
func Validate(p *Project) []string {
	if p == nil {
		return []string{"no project provided"}
	}
	if len(p.Scenes) == 0 {
		return []string{"project has no scenes"}
	}

	var problems []string
	scenes := append([]Scene(nil), p.Scenes...)
	sort.SliceStable(scenes, func(i, j int) bool { return scenes[i].SceneNumber < scenes[j].SceneNumber })
	shotsByScene := p.ShotsByScene()
	versionsByShot := p.VersionsByShot()

	for _, scene := range scenes {
		label := sceneLabel(scene)
		shots := shotsByScene[scene.ID]
		if len(shots) == 0 {
			problems = append(problems, fmt.Sprintf("%s has no shots", label))
			continue
		}
		for _, shot := range shots {
			shotName := fmt.Sprintf("%s shot %d", label, shot.ShotNumber)
			if shot.Duration <= 0 {
				problems = append(problems, fmt.Sprintf("%s has non-positive duration %g", shotName, shot.Duration))
			}
			version, ok := CurrentVersion(shot, versionsByShot[shot.ID])
			switch {
			case !ok:
				problems = append(problems, fmt.Sprintf("%s has no rendered version", shotName))
			case strings.TrimSpace(version.VideoURL) == "":
				problems = append(problems, fmt.Sprintf("%s current version %s has no video URL", shotName, version.ID))
			}
		}
	}
	return problems
}

// Check wraps Validate into a *ValidationError when problems exist.
func Check(p *Project) error {
	if problems := Validate(p); len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func sceneLabel(scene Scene) string {
	if title := strings.TrimSpace(scene.Title); title != "" {
		return fmt.Sprintf("scene %d (%s)", scene.SceneNumber, title)
	}
	return fmt.Sprintf("scene %d", scene.SceneNumber)
}
