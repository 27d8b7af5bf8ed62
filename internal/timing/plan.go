package timing

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/shorts2video/internal/config"
)

// ErrInvalidInput marks planning requests that can never succeed: no images,
// a non-positive audio duration or a non-positive frame rate.
var ErrInvalidInput = errors.New("invalid input")

// MaxTimelineFrames bounds the length of a timeline in frames, about 2.3
// years at 30 fps. Longer audio is rejected instead of overflowing frame
// counts.
const MaxTimelineFrames = math.MaxInt32

// Plan is the timing layout of one slideshow. It is computed once per render
// request and never modified afterwards.
type Plan struct {
	SourceCount int   `yaml:"source_count" json:"source_count"`
	ImageCount  int   `yaml:"image_count" json:"image_count"`
	Indices     []int `yaml:"indices" json:"indices"` // Source indices kept after sampling

	PerImage  float64 `yaml:"per_image" json:"per_image"`
	Crossfade float64 `yaml:"crossfade" json:"crossfade"`
	FadeIn    float64 `yaml:"fade_in" json:"fade_in"`
	FadeOut   float64 `yaml:"fade_out" json:"fade_out"`

	Audio    float64 `yaml:"audio" json:"audio"`
	Duration float64 `yaml:"duration" json:"duration"` // Final timeline length on the frame grid
	FPS      float64 `yaml:"fps" json:"fps"`
	MinBody  float64 `yaml:"min_body" json:"min_body"` // Visible-body floor the overlap was checked against

	// Overlap the settings asked for before the body floor was applied
	RequestedCrossfade float64 `yaml:"requested_crossfade" json:"requested_crossfade"`
}

// Solve is the bare planner: how many images to keep, how long each one is
// shown and how long neighbours overlap. The remaining layout settings use
// their defaults.
func Solve(available int, audioDuration, fps, minPerImage float64) (int, float64, float64, error) {
	p := config.DefaultParams()
	p.FPS = fps
	p.MinPerImage = minPerImage

	plan, err := NewPlan(available, audioDuration, p)
	if err != nil {
		return 0, 0, 0, err
	}
	return plan.ImageCount, plan.PerImage, plan.Crossfade, nil
}

// NewPlan lays out available images over audioDuration seconds.
//
// The image count is capped so each image gets at least MinPerImage seconds;
// surplus images are dropped by even sampling. Per-image duration is solved
// so that n*per - (n-1)*crossfade matches the audio, then both values are
// snapped to the frame grid.
func NewPlan(available int, audioDuration float64, p config.Params) (Plan, error) {
	switch {
	case available <= 0:
		return Plan{}, fmt.Errorf("%w: no images", ErrInvalidInput)
	case math.IsNaN(audioDuration) || math.IsInf(audioDuration, 0) || audioDuration <= 0:
		return Plan{}, fmt.Errorf("%w: audio duration %.3f", ErrInvalidInput, audioDuration)
	case !(p.FPS > 0) || math.IsInf(p.FPS, 0):
		return Plan{}, fmt.Errorf("%w: fps %.3f", ErrInvalidInput, p.FPS)
	case !(p.MinPerImage > 0):
		return Plan{}, fmt.Errorf("%w: min per image %.3f", ErrInvalidInput, p.MinPerImage)
	case audioDuration*p.FPS > MaxTimelineFrames:
		return Plan{}, fmt.Errorf("%w: audio duration %.3f exceeds %d frames", ErrInvalidInput, audioDuration, MaxTimelineFrames)
	}

	fps := p.FPS
	duration := FinalDuration(audioDuration, fps)

	// Every image gets at least MinPerImage seconds and at least one frame
	n := available
	if f := math.Floor(audioDuration / p.MinPerImage); f < float64(n) {
		n = int(math.Max(1, f))
	}
	if frames := Frames(duration, fps); n > frames {
		n = frames
	}

	var indices []int
	if n < available {
		indices = SampleIndices(available, n)
	} else {
		indices = make([]int, n)
		for i := range indices {
			indices[i] = i
		}
	}

	plan := Plan{
		SourceCount: available,
		ImageCount:  n,
		Indices:     indices,
		Audio:       audioDuration,
		Duration:    duration,
		FPS:         fps,
		MinBody:     MinBody(p.SafetyMinBody, fps),
	}

	if n == 1 {
		plan.PerImage = plan.Duration
		plan.FadeIn, plan.FadeOut = GlobalFades(p, plan.PerImage)
		return plan, nil
	}

	naive := audioDuration / float64(n)
	xfade := SelectCrossfadeParams(naive, p)
	plan.RequestedCrossfade = RequestedCrossfade(naive, p)

	perImage := (audioDuration + float64(n-1)*xfade) / float64(n)
	perImage = Quantize(perImage, fps)
	xfade = Quantize(xfade, fps)

	if perImage <= xfade+plan.MinBody {
		xfade = reduceCrossfade(perImage, xfade, plan.MinBody, fps)
	}

	plan.PerImage = perImage
	plan.Crossfade = xfade
	plan.FadeIn, plan.FadeOut = GlobalFades(p, perImage)
	return plan, nil
}

// reduceCrossfade dials the overlap back one frame at a time until every
// image keeps its visible body. It runs at most Frames(xfade) iterations.
func reduceCrossfade(perImage, xfade, minBody, fps float64) float64 {
	frames := Frames(math.Max(0, xfade), fps)
	for frames > 0 && perImage <= FrameDuration(frames, fps)+minBody {
		frames--
	}
	return FrameDuration(frames, fps)
}

// Degraded reports a multi-image plan that fell back to hard cuts because
// the images are too short for the overlap the settings asked for. Settings
// that ask for no overlap are not degraded.
func (pl Plan) Degraded() bool {
	return pl.ImageCount > 1 && pl.Crossfade == 0 && Frames(pl.RequestedCrossfade, pl.FPS) > 0
}

// Total is the uniform layout length n*per - (n-1)*crossfade. It may differ
// from Duration by the per-image rounding residual.
func (pl Plan) Total() float64 {
	n := float64(pl.ImageCount)
	return n*pl.PerImage - (n-1)*pl.Crossfade
}

// Durations returns the length of every clip. All clips get PerImage; the
// frame residual between Total and Duration is spread one frame per clip
// from the last clip backwards so the composed timeline lands exactly on
// Duration.
func (pl Plan) Durations() []float64 {
	if pl.ImageCount <= 0 {
		return nil
	}

	frames := make([]int, pl.ImageCount)
	perFrames := Frames(pl.PerImage, pl.FPS)
	for i := range frames {
		frames[i] = perFrames
	}

	xfFrames := Frames(pl.Crossfade, pl.FPS)
	minFrames := xfFrames + int(math.Ceil(pl.MinBody*pl.FPS))
	target := Frames(pl.Duration, pl.FPS)
	residual := target - (pl.ImageCount*perFrames - (pl.ImageCount-1)*xfFrames)

	for i := pl.ImageCount - 1; i >= 0 && residual > 0; i-- {
		frames[i]++
		residual--
	}
	// Anything left (only possible for very few, very long clips) goes on the last one
	if residual > 0 {
		frames[pl.ImageCount-1] += residual
		residual = 0
	}

	// Shrinking keeps the visible body first. Clips that are already below
	// it (hard-cut layouts) may go down to one frame past the overlap.
	for _, floor := range []int{minFrames, xfFrames} {
		for residual < 0 {
			before := residual
			for i := pl.ImageCount - 1; i >= 0 && residual < 0; i-- {
				if frames[i]-1 > floor {
					frames[i]--
					residual++
				}
			}
			if residual == before {
				break
			}
		}
	}

	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = FrameDuration(f, pl.FPS)
	}
	return out
}

// Offsets returns the timeline position where clip i starts fading in.
// Offsets[0] is always 0.
func (pl Plan) Offsets() []float64 {
	durs := pl.Durations()
	out := make([]float64, len(durs))
	acc := 0.0
	for i := 1; i < len(durs); i++ {
		acc += durs[i-1] - pl.Crossfade
		out[i] = acc
	}
	return out
}
