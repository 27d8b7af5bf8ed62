package effects

import (
	"fmt"

	"github.com/ivlev/shorts2video/internal/config"
)

type Effect interface {
	GenerateFilter(params config.SegmentParams) string
}

// DefaultEffect applies the per-image colour treatment to frames that are
// already composed at canvas size.
type DefaultEffect struct{}

func (e *DefaultEffect) GenerateFilter(p config.SegmentParams) string {
	return ContrastFilter(p.Contrast)
}

// ContrastFilter is the slight "contrast pop" every slide gets. A contrast
// of 1 or less (or unset) leaves the image untouched.
func ContrastFilter(contrast float64) string {
	if contrast <= 0 || contrast == 1 {
		return "null"
	}
	return fmt.Sprintf("eq=contrast=%.3f", contrast)
}
