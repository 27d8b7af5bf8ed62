package timing

import (
	"math"

	"github.com/ivlev/shorts2video/internal/config"
)

// GlobalFades returns the fade-in and fade-out applied to the whole timeline:
// a fraction of one image's duration, capped.
func GlobalFades(p config.Params, perImage float64) (fadeIn, fadeOut float64) {
	fadeIn = math.Min(p.FadeInCap, perImage*p.FadeInFraction)
	fadeOut = math.Min(p.FadeOutCap, perImage*p.FadeOutFraction)
	return fadeIn, fadeOut
}

// FinalDuration is the length the composed video is forced to: the audio
// duration on the frame grid, never shorter than one frame.
func FinalDuration(audioDuration, fps float64) float64 {
	d := Quantize(audioDuration, fps)
	if d < 1.0/fps {
		d = 1.0 / fps
	}
	return d
}
