package video

import (
	"image"

	"golang.org/x/image/draw"
)

// Still is a single unscaled frame. The segment filter loops and zooms it.
type Still struct {
	img image.Image
}

func NewStill(img image.Image) *Still {
	return &Still{img: img}
}

func (s *Still) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *Still) FrameCount(fps float64) int {
	return 1
}

func (s *Still) RenderFrame(dst *image.RGBA, t float64) {
	draw.Draw(dst, dst.Bounds(), s.img, s.img.Bounds().Min, draw.Src)
}
