package renderer

import (
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/ivlev/shorts2video/internal/config"
	"github.com/ivlev/shorts2video/internal/timing"
)

func TestEaseEndpoints(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{-3, 0}, // clamped
		{7, 1},  // clamped
	}

	for _, tt := range tests {
		if got := Ease(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Ease(%.2f): expected %.4f, got %.4f", tt.in, tt.want, got)
		}
	}
}

func TestEaseMonotonicAndSymmetric(t *testing.T) {
	prev := Ease(0)
	for i := 1; i <= 1000; i++ {
		p := float64(i) / 1000
		v := Ease(p)
		if v < prev {
			t.Fatalf("Ease not monotonic at %.3f: %.6f < %.6f", p, v, prev)
		}
		prev = v

		if d := math.Abs(v - (1 - Ease(1-p))); d > 1e-12 {
			t.Errorf("Ease not point-symmetric at %.3f: off by %g", p, d)
		}
	}
}

func TestPlanZoomCoverScale(t *testing.T) {
	spec, err := PlanZoom(800, 600, 1080, 1920, 3.3, 0, 1.003, 1.0, 1.06, 1.08)
	if err != nil {
		t.Fatalf("PlanZoom failed: %v", err)
	}

	if math.Abs(spec.CoverScale-3.2096) > 1e-9 {
		t.Errorf("Expected cover scale 3.2096, got %.6f", spec.CoverScale)
	}

	w, h := spec.SizeAt(0)
	if w != int(math.Ceil(800*3.2096)) {
		t.Errorf("Expected width %d, got %d", int(math.Ceil(800*3.2096)), w)
	}
	if w < 1080 || h < 1920 {
		t.Errorf("Frame at t=0 does not cover canvas: %dx%d", w, h)
	}
}

func TestPlanZoomAlternatesEnd(t *testing.T) {
	p := config.DefaultParams()
	for i := 0; i < 4; i++ {
		spec, err := PlanZoomParams(1000, 1000, 3.0, i, p)
		if err != nil {
			t.Fatal(err)
		}
		want := p.ZoomEndEven
		if i%2 == 1 {
			want = p.ZoomEndOdd
		}
		if spec.EndZoom != want {
			t.Errorf("Index %d: expected end zoom %.2f, got %.2f", i, want, spec.EndZoom)
		}
		if got := spec.ZoomAt(3.0); math.Abs(got-want) > 1e-12 {
			t.Errorf("Index %d: zoom at end %.4f, expected %.4f", i, got, want)
		}
		if got := spec.ZoomAt(0); got != p.ZoomStart {
			t.Errorf("Index %d: zoom at start %.4f, expected %.4f", i, got, p.ZoomStart)
		}
	}
}

func TestZoomCoverage(t *testing.T) {
	p := config.DefaultParams()
	duration := 3.3

	for i := 0; i < 100; i++ {
		aspect := 0.3 + 2.7*float64(i)/99
		h := 500 + 37*i
		w := int(math.Round(float64(h) * aspect))
		if w < 1 {
			w = 1
		}

		spec, err := PlanZoomParams(w, h, duration, i, p)
		if err != nil {
			t.Fatalf("PlanZoom(%dx%d) failed: %v", w, h, err)
		}

		for s := 0; s < 50; s++ {
			at := duration * float64(s) / 49
			sw, sh := spec.SizeAt(at)
			if sw < p.Width || sh < p.Height {
				t.Fatalf("Image %dx%d at t=%.3f scaled to %dx%d, canvas %dx%d", w, h, at, sw, sh, p.Width, p.Height)
			}
			if !spec.Covers(at) {
				t.Fatalf("Image %dx%d at t=%.3f leaves a bar: %v", w, h, at, spec.RectAt(at))
			}
		}
	}
}

func TestPlanZoomInvalid(t *testing.T) {
	tests := []struct {
		name         string
		imgW, imgH   int
		duration     float64
		overscan     float64
		start, endEv float64
	}{
		{"zero width", 0, 600, 3, 1.003, 1, 1.06},
		{"zero duration", 800, 600, 0, 1.003, 1, 1.06},
		{"overscan below one", 800, 600, 3, 0.99, 1, 1.06},
		{"zoom out", 800, 600, 3, 1.003, 1.2, 1.06},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanZoom(tt.imgW, tt.imgH, 1080, 1920, tt.duration, 0, tt.overscan, tt.start, tt.endEv, 1.08)
			if !errors.Is(err, timing.ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCompositorFillsCanvas(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}

	spec, err := PlanZoom(40, 30, 18, 32, 1.0, 1, 1.003, 1.0, 1.06, 1.08)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewCompositor(src, spec)
	if err != nil {
		t.Fatal(err)
	}

	dst := c.Canvas()
	for _, at := range []float64{0, 0.5, 1.0} {
		c.RenderFrame(dst, at)
		for y := 0; y < 32; y++ {
			for x := 0; x < 18; x++ {
				if got := dst.RGBAAt(x, y); got != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
					t.Fatalf("t=%.1f pixel (%d,%d) not covered: %v", at, x, y, got)
				}
			}
		}
	}

	if w, h := c.Size(); w != 18 || h != 32 {
		t.Errorf("Expected 18x32 canvas, got %dx%d", w, h)
	}
	if got := c.FrameCount(30); got != 30 {
		t.Errorf("Expected 30 frames, got %d", got)
	}
}

func TestCompositorRejectsMismatchedImage(t *testing.T) {
	spec, _ := PlanZoom(40, 30, 18, 32, 1.0, 0, 1.003, 1.0, 1.06, 1.08)
	if _, err := NewCompositor(image.NewRGBA(image.Rect(0, 0, 10, 10)), spec); err == nil {
		t.Error("Expected error for mismatched image size")
	}
}

func TestGenerateZoomFilter(t *testing.T) {
	spec, err := PlanZoom(800, 600, 1080, 1920, 3.3, 0, 1.003, 1.0, 1.06, 1.08)
	if err != nil {
		t.Fatal(err)
	}

	filter := GenerateZoomFilter(spec, 30)
	if filter == "" {
		t.Fatal("Expected non-empty filter")
	}

	for _, part := range []string{"loop=loop=98:size=1", "scale=w='", "eval=frame", "crop=1080:1920", "fps=30", "clip(t/3.300000,0,1)"} {
		if !strings.Contains(filter, part) {
			t.Errorf("Filter should contain %q: %s", part, filter)
		}
	}

	t.Logf("Generated filter: %s", filter)
}
