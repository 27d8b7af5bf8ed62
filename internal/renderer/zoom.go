package renderer

import (
	"fmt"
	"image"
	"math"

	"github.com/ivlev/shorts2video/internal/config"
	"github.com/ivlev/shorts2video/internal/timing"
)

// ZoomSpec describes how one image is scaled over the lifetime of its clip.
// The image is cover-fitted to the canvas, then zoomed from StartZoom to
// EndZoom along the easing curve, always centered.
type ZoomSpec struct {
	Index        int     `yaml:"index" json:"index"`
	ImageWidth   int     `yaml:"image_width" json:"image_width"`
	ImageHeight  int     `yaml:"image_height" json:"image_height"`
	CanvasWidth  int     `yaml:"canvas_width" json:"canvas_width"`
	CanvasHeight int     `yaml:"canvas_height" json:"canvas_height"`
	Duration     float64 `yaml:"duration" json:"duration"`
	CoverScale   float64 `yaml:"cover_scale" json:"cover_scale"`
	StartZoom    float64 `yaml:"start_zoom" json:"start_zoom"`
	EndZoom      float64 `yaml:"end_zoom" json:"end_zoom"`

	Easing EasingFunc `yaml:"-" json:"-"` // nil means Ease
}

// PlanZoom builds the zoom spec for the image at position index.
// Even indices zoom to zoomEndEven, odd ones to zoomEndOdd.
func PlanZoom(imgW, imgH, canvasW, canvasH int, duration float64, index int, overscan, zoomStart, zoomEndEven, zoomEndOdd float64) (ZoomSpec, error) {
	switch {
	case imgW <= 0 || imgH <= 0:
		return ZoomSpec{}, fmt.Errorf("%w: image size %dx%d", timing.ErrInvalidInput, imgW, imgH)
	case canvasW <= 0 || canvasH <= 0:
		return ZoomSpec{}, fmt.Errorf("%w: canvas size %dx%d", timing.ErrInvalidInput, canvasW, canvasH)
	case duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0):
		return ZoomSpec{}, fmt.Errorf("%w: clip duration %.3f", timing.ErrInvalidInput, duration)
	case overscan < 1:
		return ZoomSpec{}, fmt.Errorf("%w: overscan %.4f below 1", timing.ErrInvalidInput, overscan)
	}

	zoomEnd := zoomEndEven
	if index%2 != 0 {
		zoomEnd = zoomEndOdd
	}
	if zoomStart <= 0 || zoomStart > zoomEnd {
		return ZoomSpec{}, fmt.Errorf("%w: zoom %.3f -> %.3f", timing.ErrInvalidInput, zoomStart, zoomEnd)
	}

	cover := math.Max(float64(canvasW)/float64(imgW), float64(canvasH)/float64(imgH)) * overscan

	return ZoomSpec{
		Index:        index,
		ImageWidth:   imgW,
		ImageHeight:  imgH,
		CanvasWidth:  canvasW,
		CanvasHeight: canvasH,
		Duration:     duration,
		CoverScale:   cover,
		StartZoom:    zoomStart,
		EndZoom:      zoomEnd,
	}, nil
}

// PlanZoomParams is PlanZoom with canvas, overscan and zoom range taken from p.
func PlanZoomParams(imgW, imgH int, duration float64, index int, p config.Params) (ZoomSpec, error) {
	return PlanZoom(imgW, imgH, p.Width, p.Height, duration, index, p.Overscan, p.ZoomStart, p.ZoomEndEven, p.ZoomEndOdd)
}

// Progress returns the eased progress at t seconds into the clip.
func (z ZoomSpec) Progress(t float64) float64 {
	ease := z.Easing
	if ease == nil {
		ease = Ease
	}
	return ease(t / z.Duration)
}

// ZoomAt returns the zoom factor on top of the cover scale at time t.
func (z ZoomSpec) ZoomAt(t float64) float64 {
	return lerp(z.StartZoom, z.EndZoom, z.Progress(t))
}

// SizeAt returns the scaled image size at time t. Dimensions are rounded up
// so the image never falls short of the canvas.
func (z ZoomSpec) SizeAt(t float64) (int, int) {
	s := z.CoverScale * z.ZoomAt(t)
	w := int(math.Ceil(float64(z.ImageWidth) * s))
	h := int(math.Ceil(float64(z.ImageHeight) * s))
	return w, h
}

// RectAt returns where the scaled image lands on the canvas at time t.
// The origin is usually negative: the image overhangs every edge.
func (z ZoomSpec) RectAt(t float64) image.Rectangle {
	w, h := z.SizeAt(t)
	x := (z.CanvasWidth - w) / 2
	y := (z.CanvasHeight - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// Covers reports whether the scaled image fills the whole canvas at time t.
func (z ZoomSpec) Covers(t float64) bool {
	r := z.RectAt(t)
	return r.Min.X <= 0 && r.Min.Y <= 0 && r.Max.X >= z.CanvasWidth && r.Max.Y >= z.CanvasHeight
}
