package effects

import (
	"fmt"

	"github.com/ivlev/shorts2video/internal/config"
	"github.com/ivlev/shorts2video/internal/renderer"
)

// ZoomFilterEffect lets ffmpeg render the zoom itself: the segment input is
// the still image, scaled per frame along the planned zoom and cropped.
type ZoomFilterEffect struct {
	Specs []renderer.ZoomSpec
}

// NewZoomFilterEffect creates an effect for the given per-image zoom specs,
// indexed like the segments.
func NewZoomFilterEffect(specs []renderer.ZoomSpec) *ZoomFilterEffect {
	return &ZoomFilterEffect{
		Specs: specs,
	}
}

// GenerateFilter generates the FFmpeg filter for one segment
func (e *ZoomFilterEffect) GenerateFilter(p config.SegmentParams) string {
	contrast := ContrastFilter(p.Contrast)

	if p.PageIndex < 0 || p.PageIndex >= len(e.Specs) {
		// Нет плана зума: статичный cover-fit по центру
		return fmt.Sprintf("loop=loop=-1:size=1:start=0,scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1,%s",
			p.Width, p.Height, p.Width, p.Height, contrast)
	}

	spec := e.Specs[p.PageIndex]
	// План строился под длительность клипа; берём фактическую из параметров сегмента
	if p.Duration > 0 {
		spec.Duration = p.Duration
	}

	return fmt.Sprintf("%s,%s", renderer.GenerateZoomFilter(spec, p.FPS), contrast)
}
