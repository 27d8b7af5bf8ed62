package timing

import (
	"errors"
	"math"
	"testing"

	"github.com/ivlev/shorts2video/internal/config"
)

const eps = 1e-9

func TestQuantizeIdempotent(t *testing.T) {
	for _, fps := range []float64{10, 23.976, 24, 25, 29.97, 30, 60, 120} {
		for _, v := range []float64{0, 0.01, 0.45, 1.0 / 3.0, 3.3111, 9.0, 10.0, 59.999, 123.456} {
			q := Quantize(v, fps)
			if qq := Quantize(q, fps); qq != q {
				t.Errorf("fps=%.3f t=%.4f: quantize not idempotent: %v != %v", fps, v, qq, q)
			}
		}
	}
}

func TestQuantizeOnGrid(t *testing.T) {
	fps := 30.0
	for _, v := range []float64{0.01, 0.45, 2.71828, 9.99} {
		q := Quantize(v, fps)
		frames := q * fps
		if math.Abs(frames-math.Round(frames)) > 1e-6 {
			t.Errorf("Quantize(%f) = %f is off the frame grid", v, q)
		}
		if math.Abs(q-v) > 0.5/fps+eps {
			t.Errorf("Quantize(%f) = %f is not the nearest grid point", v, q)
		}
	}
}

func TestSelectCrossfade(t *testing.T) {
	tests := []struct {
		name     string
		perImage float64
		fps      float64
		cap      float64
		want     float64
	}{
		// 0.22*3.0 exceeds the cap; 0.45s is 13.5 frames and rounds to 14
		{"capped", 3.0, 30, 0.45, 14.0 / 30},
		// 0.22*1.5 = 0.33 lies between floor and cap
		{"proportional", 1.5, 30, 0.45, 10.0 / 30},
		// floor 0.25 wins over 0.22*1.0, body limit 0.6 does not bind
		{"floor", 1.0, 25, 0.45, 6.0 / 25},
		// only 0.16s left after the 0.4s body
		{"body bound", 0.56, 30, 0.45, 5.0 / 30},
		// image shorter than the body: no crossfade at all
		{"too short", 0.35, 30, 0.45, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectCrossfade(tt.perImage, tt.fps, tt.cap)
			if math.Abs(got-tt.want) > eps {
				t.Errorf("Expected %f, got %f", tt.want, got)
			}
			if got < 0 {
				t.Errorf("Crossfade must be non-negative, got %f", got)
			}
		})
	}
}

func TestSelectCrossfadeOnGrid(t *testing.T) {
	for _, fps := range []float64{10, 24, 25, 30, 60} {
		for per := 0.3; per < 6.0; per += 0.07 {
			got := SelectCrossfade(per, fps, 0.45)
			frames := got * fps
			if math.Abs(frames-math.Round(frames)) > 1e-6 {
				t.Errorf("fps=%.0f per=%.2f: crossfade %f off the frame grid", fps, per, got)
			}
			if got < 0 || got >= per {
				t.Errorf("fps=%.0f per=%.2f: crossfade %f out of range", fps, per, got)
			}
			if got > 0.45+0.5/fps {
				t.Errorf("fps=%.0f per=%.2f: crossfade %f exceeds cap", fps, per, got)
			}
		}
	}
}

func TestSampleIndices(t *testing.T) {
	tests := []struct {
		n, k int
		want []int
	}{
		{20, 2, []int{0, 19}},
		{10, 1, []int{0}},
		{5, 5, []int{0, 1, 2, 3, 4}},
		{7, 3, []int{0, 3, 6}},
		{6, 3, []int{0, 2, 5}}, // 2.5 rounds to even
	}

	for _, tt := range tests {
		got := SampleIndices(tt.n, tt.k)
		if len(got) != len(tt.want) {
			t.Fatalf("n=%d k=%d: expected %v, got %v", tt.n, tt.k, tt.want, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("n=%d k=%d: expected %v, got %v", tt.n, tt.k, tt.want, got)
				break
			}
		}
	}
}

func TestSampleEvenlyKeepsEnds(t *testing.T) {
	for n := 2; n <= 60; n++ {
		seq := make([]int, n)
		for i := range seq {
			seq[i] = i * 10
		}
		for k := 2; k <= n; k++ {
			got, err := SampleEvenly(seq, k)
			if err != nil {
				t.Fatalf("SampleEvenly failed: %v", err)
			}
			if len(got) != k {
				t.Fatalf("n=%d k=%d: expected %d elements, got %d", n, k, k, len(got))
			}
			if got[0] != seq[0] || got[k-1] != seq[n-1] {
				t.Errorf("n=%d k=%d: ends not kept: %v", n, k, got)
			}
		}
	}
}

func TestSampleEvenlyEmpty(t *testing.T) {
	if _, err := SampleEvenly([]string{}, 3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestPlanSingleImage(t *testing.T) {
	p := config.DefaultParams()
	plan, err := NewPlan(1, 10.0, p)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}

	if plan.ImageCount != 1 {
		t.Errorf("Expected 1 image, got %d", plan.ImageCount)
	}
	if math.Abs(plan.PerImage-10.0) > eps {
		t.Errorf("Expected per image 10.0, got %f", plan.PerImage)
	}
	if plan.Crossfade != 0 {
		t.Errorf("Expected no crossfade, got %f", plan.Crossfade)
	}
	if plan.Degraded() {
		t.Error("Single image plan is not a degraded layout")
	}
}

func TestPlanThreeImages(t *testing.T) {
	n, perImage, xfade, err := Solve(3, 9.0, 30, 3.0)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if n != 3 {
		t.Errorf("Expected 3 images, got %d", n)
	}
	if want := SelectCrossfade(3.0, 30, 0.45); math.Abs(xfade-want) > eps {
		t.Errorf("Expected crossfade %f, got %f", want, xfade)
	}
	if math.Abs(perImage-3.3) > eps {
		t.Errorf("Expected per image 3.3, got %f", perImage)
	}

	total := 3*perImage - 2*xfade
	if math.Abs(total-9.0) > 1.0/30+eps {
		t.Errorf("Expected total within one frame of 9.0, got %f", total)
	}
}

func TestPlanDownsamples(t *testing.T) {
	plan, err := NewPlan(20, 6.0, config.DefaultParams())
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}

	if plan.ImageCount != 2 {
		t.Fatalf("Expected 2 images, got %d", plan.ImageCount)
	}
	if plan.Indices[0] != 0 || plan.Indices[1] != 19 {
		t.Errorf("Expected indices [0 19], got %v", plan.Indices)
	}
}

func TestPlanInvalidInput(t *testing.T) {
	p := config.DefaultParams()
	zeroFPS := p
	zeroFPS.FPS = 0
	nanMin := p
	nanMin.MinPerImage = math.NaN()

	tests := []struct {
		name      string
		available int
		audio     float64
		params    config.Params
	}{
		{"no images", 0, 10, p},
		{"zero audio", 3, 0, p},
		{"negative audio", 3, -1, p},
		{"nan audio", 3, math.NaN(), p},
		{"zero fps", 3, 10, zeroFPS},
		{"nan min per image", 3, 10, nanMin},
		{"audio beyond frame range", 3, 1e30, p},
		{"infinite audio", 3, math.Inf(1), p},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlan(tt.available, tt.audio, tt.params)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPlanProperties(t *testing.T) {
	for _, fps := range []float64{24, 25, 30, 60} {
		p := config.DefaultParams()
		p.FPS = fps
		frame := 1.0 / fps

		for n := 2; n <= 40; n++ {
			for _, extra := range []float64{0, 0.013, 0.5, 1.7, 4.25, 11.1} {
				audio := float64(n)*p.MinPerImage + extra

				plan, err := NewPlan(n, audio, p)
				if err != nil {
					t.Fatalf("NewPlan(%d, %f) failed: %v", n, audio, err)
				}
				if plan.ImageCount != n {
					t.Fatalf("n=%d audio=%f: expected all images kept, got %d", n, audio, plan.ImageCount)
				}

				if plan.Crossfade >= plan.PerImage {
					t.Errorf("n=%d audio=%f: crossfade %f not below per image %f", n, audio, plan.Crossfade, plan.PerImage)
				}
				if plan.PerImage-plan.Crossfade < plan.MinBody {
					t.Errorf("n=%d audio=%f: body %f below floor %f", n, audio, plan.PerImage-plan.Crossfade, plan.MinBody)
				}

				// Uniform layout drifts at most half a frame per clip
				if d := math.Abs(plan.Total() - audio); d > float64(n)*frame/2+frame {
					t.Errorf("n=%d audio=%f: uniform total %f drifts %f", n, audio, plan.Total(), d)
				}

				// The composed timeline lands within one frame of the audio
				composed := -float64(n-1) * plan.Crossfade
				for _, d := range plan.Durations() {
					composed += d
				}
				if math.Abs(composed-audio) > frame+eps {
					t.Errorf("n=%d audio=%f fps=%.0f: composed %f not within a frame", n, audio, fps, composed)
				}
				if math.Abs(composed-plan.Duration) > 1e-6 {
					t.Errorf("n=%d audio=%f: composed %f != final duration %f", n, audio, composed, plan.Duration)
				}
			}
		}
	}
}

func TestPlanDegradesToCuts(t *testing.T) {
	p := config.DefaultParams()
	p.MinPerImage = 0.3

	plan, err := NewPlan(10, 3.05, p)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}

	if plan.Crossfade != 0 {
		t.Errorf("Expected crossfade 0, got %f", plan.Crossfade)
	}
	if !plan.Degraded() {
		t.Error("Expected degraded layout")
	}
	if got := len(plan.Durations()); got != 10 {
		t.Errorf("Expected 10 clips, got %d", got)
	}

	// Clips already shorter than the body floor still give up frames so the
	// cut timeline ends with the audio
	for _, audio := range []float64{3.05, 3.17, 3.2} {
		plan, err := NewPlan(10, audio, p)
		if err != nil {
			t.Fatalf("NewPlan(10, %f) failed: %v", audio, err)
		}
		if got := composedLength(plan); math.Abs(got-plan.Duration) > 1e-6 {
			t.Errorf("audio=%f: composed %f != final duration %f", audio, got, plan.Duration)
		}
		for i, d := range plan.Durations() {
			if d < 1/p.FPS-eps {
				t.Errorf("audio=%f: clip %d shorter than a frame: %f", audio, i, d)
			}
		}
	}
}

func TestPlanHardCutsByChoice(t *testing.T) {
	p := config.DefaultParams()
	p.CrossfadeCap = 0

	plan, err := NewPlan(3, 12.0, p)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if plan.Crossfade != 0 {
		t.Errorf("Expected crossfade 0, got %f", plan.Crossfade)
	}
	if plan.Degraded() {
		t.Error("A layout configured without crossfades is not degraded")
	}
}

func TestPlanLongAudio(t *testing.T) {
	plan, err := NewPlan(3, 1e7, config.DefaultParams())
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if plan.ImageCount != 3 || len(plan.Indices) != 3 {
		t.Fatalf("Expected 3 images, got %d (indices %v)", plan.ImageCount, plan.Indices)
	}
	if plan.PerImage <= 0 {
		t.Errorf("Expected positive per image, got %f", plan.PerImage)
	}
}

func TestPlanAtLeastOneFramePerImage(t *testing.T) {
	p := config.DefaultParams()
	p.MinPerImage = 0.01

	plan, err := NewPlan(100, 1.0, p)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if plan.ImageCount > 30 {
		t.Errorf("Expected at most 30 images for 30 frames, got %d", plan.ImageCount)
	}
	for i, d := range plan.Durations() {
		if d < 1/p.FPS-eps {
			t.Errorf("Clip %d shorter than a frame: %f", i, d)
		}
	}
	if got := composedLength(plan); math.Abs(got-plan.Duration) > 1e-6 {
		t.Errorf("Composed %f != final duration %f", got, plan.Duration)
	}
}

func composedLength(plan Plan) float64 {
	total := -float64(plan.ImageCount-1) * plan.Crossfade
	for _, d := range plan.Durations() {
		total += d
	}
	return total
}

func TestReduceCrossfade(t *testing.T) {
	fps := 30.0
	// 1.0s images with a 0.5s overlap leave 0.5s, short of a 0.61s body
	got := reduceCrossfade(1.0, 0.5, 0.61, fps)
	if 1.0-got <= 0.61 {
		t.Errorf("Body still too small: per=1.0 crossfade=%f", got)
	}
	if math.Abs(got-11.0/30) > eps {
		t.Errorf("Expected 11 frames, got %f", got*fps)
	}

	if got := reduceCrossfade(0.3, 0.2, 0.4, fps); got != 0 {
		t.Errorf("Expected crossfade to reach 0, got %f", got)
	}
}

func TestOffsets(t *testing.T) {
	plan, err := NewPlan(3, 9.0, config.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	offsets := plan.Offsets()
	durs := plan.Durations()
	if offsets[0] != 0 {
		t.Errorf("First offset must be 0, got %f", offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		want := offsets[i-1] + durs[i-1] - plan.Crossfade
		if math.Abs(offsets[i]-want) > eps {
			t.Errorf("Offset %d: expected %f, got %f", i, want, offsets[i])
		}
	}
	end := offsets[len(offsets)-1] + durs[len(durs)-1]
	if math.Abs(end-plan.Duration) > 1e-6 {
		t.Errorf("Timeline ends at %f, expected %f", end, plan.Duration)
	}
}

func TestGlobalFades(t *testing.T) {
	p := config.DefaultParams()

	in, out := GlobalFades(p, 3.3)
	if math.Abs(in-0.30) > eps || math.Abs(out-0.25) > eps {
		t.Errorf("Expected capped fades 0.30/0.25, got %f/%f", in, out)
	}

	in, out = GlobalFades(p, 1.0)
	if math.Abs(in-0.15) > eps || math.Abs(out-0.12) > eps {
		t.Errorf("Expected proportional fades 0.15/0.12, got %f/%f", in, out)
	}
}
