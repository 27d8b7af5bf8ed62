package renderer

// EasingFunc maps normalized progress in [0,1] onto eased progress in [0,1].
type EasingFunc func(p float64) float64

// Ease is the symmetric cubic ease-in-out curve. Input is clamped to [0,1].
func Ease(p float64) float64 {
	p = clamp01(p)
	if p < 0.5 {
		return 4 * p * p * p
	}
	q := -2*p + 2
	return 1 - q*q*q/2
}

// Linear is the identity curve, kept for callers that want a constant-speed zoom.
func Linear(p float64) float64 {
	return clamp01(p)
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(p float64) float64 {
	switch {
	case p != p: // NaN
		return 0
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
