package renderer

import (
	"fmt"

	"github.com/ivlev/shorts2video/internal/timing"
)

// GenerateZoomFilter builds an ffmpeg filter chain that reproduces spec for a
// single still frame: the frame is looped for the clip length, scaled per
// frame along the eased zoom with rounding up, then center-cropped to the
// canvas. Use it when frames are rendered by ffmpeg instead of the Compositor.
func GenerateZoomFilter(spec ZoomSpec, fps float64) string {
	if spec.Duration <= 0 || fps <= 0 {
		return ""
	}

	frames := timing.Frames(spec.Duration, fps)
	if frames < 1 {
		frames = 1
	}
	zoomExpr := buildZoomExpression(spec)

	// ceil() on both axes, then trunc to even for the encoder's chroma layout
	widthExpr := fmt.Sprintf("2*ceil(%d*%.6f*(%s)/2)", spec.ImageWidth, spec.CoverScale, zoomExpr)
	heightExpr := fmt.Sprintf("2*ceil(%d*%.6f*(%s)/2)", spec.ImageHeight, spec.CoverScale, zoomExpr)

	return fmt.Sprintf("loop=loop=%d:size=1:start=0,setpts=N/(%s*TB),scale=w='%s':h='%s':eval=frame:flags=bicubic,crop=%d:%d:(iw-%d)/2:(ih-%d)/2,fps=%s,setsar=1",
		frames-1, formatFPS(fps),
		widthExpr, heightExpr,
		spec.CanvasWidth, spec.CanvasHeight, spec.CanvasWidth, spec.CanvasHeight,
		formatFPS(fps))
}

// buildZoomExpression writes the cubic ease-in-out zoom as an ffmpeg expression of t.
func buildZoomExpression(spec ZoomSpec) string {
	if spec.StartZoom == spec.EndZoom {
		return fmt.Sprintf("%.6f", spec.StartZoom)
	}

	progress := fmt.Sprintf("clip(t/%.6f,0,1)", spec.Duration)
	eased := fmt.Sprintf("if(lt(%[1]s,0.5),4*pow(%[1]s,3),1-pow(-2*%[1]s+2,3)/2)", progress)

	return fmt.Sprintf("%.6f+%.6f*%s", spec.StartZoom, spec.EndZoom-spec.StartZoom, eased)
}

func formatFPS(fps float64) string {
	if fps == float64(int(fps)) {
		return fmt.Sprintf("%d", int(fps))
	}
	return fmt.Sprintf("%.3f", fps)
}
