package manifest

import (
	"github.com/ivlev/shorts2video/internal/renderer"
	"github.com/ivlev/shorts2video/internal/timing"
)

const Version = "1.0"

// Manifest records everything a render decided: the timing plan and the
// zoom of every clip. Replaying it reproduces the same timeline.
type Manifest struct {
	Version   string      `yaml:"version"`
	RunID     string      `yaml:"run_id"`
	CreatedAt string      `yaml:"created_at"`
	Input     string      `yaml:"input"`
	Audio     string      `yaml:"audio"`
	Output    string      `yaml:"output"`
	Plan      timing.Plan `yaml:"plan"`
	Clips     []Clip      `yaml:"clips"`
	Subtitles string      `yaml:"subtitles,omitempty"` // Path of the generated .ass file
}

// Clip is one image on the timeline.
type Clip struct {
	Index    int               `yaml:"index"`
	Source   int               `yaml:"source"` // Page or file index before sampling
	Start    float64           `yaml:"start"`  // Timeline offset in seconds
	Duration float64           `yaml:"duration"`
	Zoom     renderer.ZoomSpec `yaml:"zoom"`
}

// New lays out the clips of plan. zooms must be indexed like the clips.
func New(runID string, plan timing.Plan, zooms []renderer.ZoomSpec) *Manifest {
	durations := plan.Durations()
	offsets := plan.Offsets()

	clips := make([]Clip, plan.ImageCount)
	for i := range clips {
		clips[i] = Clip{
			Index:    i,
			Source:   plan.Indices[i],
			Start:    offsets[i],
			Duration: durations[i],
		}
		if i < len(zooms) {
			clips[i].Zoom = zooms[i]
		}
	}

	return &Manifest{
		Version: Version,
		RunID:   runID,
		Plan:    plan,
		Clips:   clips,
	}
}
