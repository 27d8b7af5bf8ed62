package config

import (
	"errors"
	"fmt"
)

var ErrInvalidParams = errors.New("invalid params")

// Params holds every tunable of the slideshow layout. It is passed by value
// into each planning call and never mutated after construction.
type Params struct {
	Width  int     `yaml:"width" json:"width"`   // Target canvas width in pixels
	Height int     `yaml:"height" json:"height"` // Target canvas height in pixels
	FPS    float64 `yaml:"fps" json:"fps"`       // Frame grid is 1/FPS seconds

	MinPerImage float64 `yaml:"min_per_image" json:"min_per_image"` // Minimum seconds each image stays on screen

	// Crossfade selection: clamp(per_image*Fraction, Floor, Cap)
	CrossfadeCap      float64 `yaml:"crossfade_cap" json:"crossfade_cap"`
	CrossfadeFraction float64 `yaml:"crossfade_fraction" json:"crossfade_fraction"`
	CrossfadeFloor    float64 `yaml:"crossfade_floor" json:"crossfade_floor"`
	SafetyMinBody     float64 `yaml:"safety_min_body" json:"safety_min_body"` // Visible seconds per image outside any overlap

	ZoomStart   float64 `yaml:"zoom_start" json:"zoom_start"`
	ZoomEndEven float64 `yaml:"zoom_end_even" json:"zoom_end_even"`
	ZoomEndOdd  float64 `yaml:"zoom_end_odd" json:"zoom_end_odd"`
	Overscan    float64 `yaml:"overscan" json:"overscan"` // Cover-fit excess absorbing resize rounding

	Contrast float64 `yaml:"contrast" json:"contrast"`

	FadeInCap       float64 `yaml:"fade_in_cap" json:"fade_in_cap"`
	FadeOutCap      float64 `yaml:"fade_out_cap" json:"fade_out_cap"`
	FadeInFraction  float64 `yaml:"fade_in_fraction" json:"fade_in_fraction"`
	FadeOutFraction float64 `yaml:"fade_out_fraction" json:"fade_out_fraction"`
}

// DefaultParams returns the vertical 1080x1920 @ 30fps layout.
func DefaultParams() Params {
	return Params{
		Width:             1080,
		Height:            1920,
		FPS:               30,
		MinPerImage:       3.0,
		CrossfadeCap:      0.45,
		CrossfadeFraction: 0.22,
		CrossfadeFloor:    0.25,
		SafetyMinBody:     0.4,
		ZoomStart:         1.00,
		ZoomEndEven:       1.06,
		ZoomEndOdd:        1.08,
		Overscan:          1.003,
		Contrast:          1.08,
		FadeInCap:         0.30,
		FadeOutCap:        0.25,
		FadeInFraction:    0.15,
		FadeOutFraction:   0.12,
	}
}

// WithPreset returns a copy of p with the canvas size of a named aspect preset.
func (p Params) WithPreset(preset string) (Params, error) {
	switch preset {
	case "", "9:16":
		p.Width, p.Height = 1080, 1920
	case "16:9":
		p.Width, p.Height = 1920, 1080
	case "4:5":
		p.Width, p.Height = 1080, 1350
	case "1:1":
		p.Width, p.Height = 1080, 1080
	default:
		return p, fmt.Errorf("%w: unknown preset %q", ErrInvalidParams, preset)
	}
	return p, nil
}

// Validate checks the invariants the planners rely on.
func (p Params) Validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidParams, p.Width, p.Height)
	case p.FPS <= 0:
		return fmt.Errorf("%w: fps %.3f", ErrInvalidParams, p.FPS)
	case p.MinPerImage <= 0:
		return fmt.Errorf("%w: min_per_image %.3f", ErrInvalidParams, p.MinPerImage)
	case p.CrossfadeCap < 0 || p.CrossfadeFloor < 0 || p.CrossfadeFraction < 0:
		return fmt.Errorf("%w: negative crossfade setting", ErrInvalidParams)
	case p.SafetyMinBody < 0:
		return fmt.Errorf("%w: safety_min_body %.3f", ErrInvalidParams, p.SafetyMinBody)
	case p.Overscan < 1:
		return fmt.Errorf("%w: overscan %.4f below 1", ErrInvalidParams, p.Overscan)
	case p.ZoomStart <= 0 || p.ZoomStart > p.ZoomEndEven || p.ZoomStart > p.ZoomEndOdd:
		return fmt.Errorf("%w: zoom_start %.3f must be positive and <= both zoom ends", ErrInvalidParams, p.ZoomStart)
	case p.Contrast <= 0:
		return fmt.Errorf("%w: contrast %.3f", ErrInvalidParams, p.Contrast)
	}
	return nil
}

// AllowsHardCuts reports whether images may be shown for no longer than the
// visible-body floor. Such images get no crossfade and are joined with hard
// cuts.
func (p Params) AllowsHardCuts() bool {
	body := p.SafetyMinBody
	if p.FPS > 0 && 2/p.FPS > body {
		body = 2 / p.FPS
	}
	return p.MinPerImage <= body
}

// Config holds the options of a single render run.
type Config struct {
	Params Params

	InputPath   string
	AudioPath   string
	OutputVideo string
	RunID       string

	Workers        int
	EncodeWorkers  int
	TransitionType string
	Renderer       string // "frames" (Go compositor) or "ffmpeg" (scale filter)
	DPI            int
	VideoEncoder   string
	Quality        int

	Subtitles SubtitleConfig

	ManifestPath string
	ShowStats    bool
	BuildVersion string
}

// SubtitleConfig selects the word highlight variant and its look.
type SubtitleConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Style         string `yaml:"style"` // "highlight" or "karaoke"
	AlignmentPath string `yaml:"alignment"`
	Text          string `yaml:"text"` // Narration text used when no alignment exists
	OutputASS     string `yaml:"output_ass"`

	Font          string `yaml:"font"`
	FontFile      string `yaml:"font_file"` // TTF used to measure caption width, empty for Go Mono
	FontSize      int    `yaml:"font_size"`
	PrimaryColor  string `yaml:"primary_color"`
	OutlineColor  string `yaml:"outline_color"`
	HighlightBack string `yaml:"highlight_back"`
	HighlightText string `yaml:"highlight_text"`
	KaraokeColor  string `yaml:"karaoke_color"`
	Alignment     int    `yaml:"alignment_code"`
	MarginL       int    `yaml:"margin_l"`
	MarginR       int    `yaml:"margin_r"`
	MarginV       int    `yaml:"margin_v"`
	BurnCRF       int    `yaml:"burn_crf"`
	KeepUnburned  bool   `yaml:"keep_unburned"`
}

// DefaultSubtitles mirrors the base/highlight look: white mono base text and
// a translucent amber box behind the spoken word.
func DefaultSubtitles() SubtitleConfig {
	return SubtitleConfig{
		Style:         "highlight",
		Font:          "DejaVu Sans Mono",
		FontSize:      54,
		PrimaryColor:  "&H00FFFFFF",
		OutlineColor:  "&H00111111",
		HighlightBack: "&H8033CCFF",
		HighlightText: "&H00000000",
		KaraokeColor:  "&H00FF0000",
		Alignment:     5,
		MarginL:       60,
		MarginR:       60,
		MarginV:       40,
		BurnCRF:       18,
	}
}

// SegmentParams describes one image clip handed to the encoder.
type SegmentParams struct {
	Width, Height int
	FPS           float64
	Duration      float64
	PageIndex     int
	Contrast      float64
	Filter        string
}
