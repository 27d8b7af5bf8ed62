package timing

import "math"

// Quantize snaps t to the nearest point of the 1/fps frame grid.
// Halfway cases round to the even frame index.
func Quantize(t, fps float64) float64 {
	frame := 1.0 / fps
	return math.RoundToEven(t/frame) * frame
}

// Frames returns how many whole frames t covers after quantization.
func Frames(t, fps float64) int {
	return int(math.RoundToEven(t * fps))
}

// FrameDuration converts a frame count back into seconds.
func FrameDuration(frames int, fps float64) float64 {
	return float64(frames) / fps
}
