package subtitles

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

// Measurer reports how wide caption text renders at the configured size.
type Measurer struct {
	face font.Face
	size float64
}

// NewMeasurer loads the TTF at fontPath, or the embedded Go Mono face when
// the path is empty or unreadable.
func NewMeasurer(fontPath string, size float64) (*Measurer, error) {
	if size <= 0 {
		size = 54
	}

	var data []byte
	if fontPath != "" {
		var err error
		data, err = os.ReadFile(fontPath)
		if err != nil {
			fmt.Printf("[!] Шрифт %s недоступен, используется Go Mono: %v\n", fontPath, err)
			data = nil
		}
	}
	if data == nil {
		data = gomono.TTF
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	// ASS font sizes are in script pixels, so measure at 72 dpi
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	return &Measurer{face: face, size: size}, nil
}

// Width returns the advance of s in pixels.
func (m *Measurer) Width(s string) float64 {
	adv := font.MeasureString(m.face, s)
	return float64(adv) / 64
}

// Fits reports whether s fits on one line of a canvas width pixels wide
// after subtracting the horizontal margins.
func (m *Measurer) Fits(s string, width, marginL, marginR int) bool {
	return m.Width(s) <= float64(width-marginL-marginR)
}
