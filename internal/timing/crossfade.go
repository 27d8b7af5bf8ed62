package timing

import (
	"math"

	"github.com/ivlev/shorts2video/internal/config"
)

const (
	defaultCrossfadeFraction = 0.22
	defaultCrossfadeFloor    = 0.25
	defaultMinBody           = 0.4
)

// SelectCrossfade picks a frame-aligned overlap for images shown perImage
// seconds, never longer than maxCap and always leaving a visible body.
func SelectCrossfade(perImage, fps, maxCap float64) float64 {
	return selectCrossfade(perImage, fps, maxCap, defaultCrossfadeFraction, defaultCrossfadeFloor, defaultMinBody)
}

// SelectCrossfadeParams is SelectCrossfade driven by the configured fraction,
// floor, cap and body.
func SelectCrossfadeParams(perImage float64, p config.Params) float64 {
	return selectCrossfade(perImage, p.FPS, p.CrossfadeCap, p.CrossfadeFraction, p.CrossfadeFloor, p.SafetyMinBody)
}

// MinBody is the shortest stretch of an image that must stay on screen with
// no overlap: the body floor or two frames, whichever is longer.
func MinBody(floor, fps float64) float64 {
	return math.Max(floor, 2.0/fps)
}

// RequestedCrossfade is the overlap the settings ask for before the body
// floor and the frame grid are applied.
func RequestedCrossfade(perImage float64, p config.Params) float64 {
	return crossfadeCandidate(perImage, p.CrossfadeCap, p.CrossfadeFraction, p.CrossfadeFloor)
}

func crossfadeCandidate(perImage, maxCap, fraction, floor float64) float64 {
	return math.Max(0, math.Min(maxCap, math.Max(floor, perImage*fraction)))
}

func selectCrossfade(perImage, fps, maxCap, fraction, floor, bodyFloor float64) float64 {
	candidate := crossfadeCandidate(perImage, maxCap, fraction, floor)

	body := MinBody(bodyFloor, fps)
	candidate = math.Min(candidate, math.Max(0, perImage-body))

	q := Quantize(candidate, fps)

	// Rounding must not throw away a crossfade that was long enough to exist
	twoFrames := 2.0 / fps
	if q < twoFrames && candidate >= twoFrames {
		q = twoFrames
	}
	return math.Max(0, q)
}
