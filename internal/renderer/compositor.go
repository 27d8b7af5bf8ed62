package renderer

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/ivlev/shorts2video/internal/system"
	"github.com/ivlev/shorts2video/internal/timing"
)

// Compositor draws one image onto the canvas for any instant of its clip.
type Compositor struct {
	Spec  ZoomSpec
	src   image.Image
	scale draw.Scaler
}

// NewCompositor prepares src for rendering with spec. The image is decoded
// once; every frame is resampled from the original pixels.
func NewCompositor(src image.Image, spec ZoomSpec) (*Compositor, error) {
	b := src.Bounds()
	if b.Dx() != spec.ImageWidth || b.Dy() != spec.ImageHeight {
		return nil, fmt.Errorf("image is %dx%d, zoom spec expects %dx%d", b.Dx(), b.Dy(), spec.ImageWidth, spec.ImageHeight)
	}
	return &Compositor{
		Spec:  spec,
		src:   src,
		scale: draw.ApproxBiLinear,
	}, nil
}

// Canvas returns a pooled canvas sized for this compositor. Release it with
// system.PutImage when done.
func (c *Compositor) Canvas() *image.RGBA {
	return system.GetImage(image.Rect(0, 0, c.Spec.CanvasWidth, c.Spec.CanvasHeight))
}

// RenderFrame paints the frame at t seconds into dst. Parts of the scaled
// image outside the canvas are cropped.
func (c *Compositor) RenderFrame(dst *image.RGBA, t float64) {
	// Фон на случай, если dst пришёл из пула с остатками прошлого кадра
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	c.scale.Scale(dst, c.Spec.RectAt(t), c.src, c.src.Bounds(), draw.Src, nil)
}

// Size returns the canvas size frames are rendered at.
func (c *Compositor) Size() (int, int) {
	return c.Spec.CanvasWidth, c.Spec.CanvasHeight
}

// FrameCount returns how many frames the clip spans at fps.
func (c *Compositor) FrameCount(fps float64) int {
	n := timing.Frames(c.Spec.Duration, fps)
	if n < 1 {
		n = 1
	}
	return n
}
