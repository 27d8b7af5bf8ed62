package subtitles

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ivlev/shorts2video/internal/config"
)

const (
	LayerBase      = 0
	LayerHighlight = 1
)

// Overlay is one text interval on screen. Highlight overlays are prefixed
// with Pad blanks so the word lands exactly over its place in the base line.
type Overlay struct {
	Layer   int     `json:"layer"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Pad     int     `json:"pad"`      // Leading blanks, in characters
	XOffset float64 `json:"x_offset"` // Pad width in pixels, when a Measurer is used
}

// MapHighlights turns one segment into a base overlay spanning the segment
// plus one highlight overlay per timed word. Untimed words are skipped and
// do not count towards the padding.
func MapHighlights(seg Segment) []Overlay {
	return mapHighlights(seg, nil)
}

func mapHighlights(seg Segment, m *Measurer) []Overlay {
	words := seg.TimedWords()
	if len(words) == 0 {
		return nil
	}

	tokens := make([]string, len(words))
	for i, w := range words {
		tokens[i] = w.Token
	}

	out := make([]Overlay, 0, len(words)+1)
	out = append(out, Overlay{
		Layer: LayerBase,
		Text:  strings.Join(tokens, " "),
		Start: seg.Start,
		End:   seg.End,
	})

	for i, w := range words {
		prefix := strings.Join(tokens[:i], " ")
		pad := utf8.RuneCountInString(prefix)
		if i > 0 {
			pad++
		}

		ov := Overlay{
			Layer: LayerHighlight,
			Text:  w.Token,
			Start: *w.Start,
			End:   *w.End,
			Pad:   pad,
		}
		if m != nil {
			ov.XOffset = m.Width(strings.Repeat(" ", pad))
		}
		out = append(out, ov)
	}
	return out
}

// KaraokePart is one token of a karaoke line and how long it fills.
type KaraokePart struct {
	Token     string `json:"token"`
	Centisecs int    `json:"centiseconds"`
}

// KaraokeLine is a segment rendered as progressive fill. Text is used
// verbatim when no word carries timing.
type KaraokeLine struct {
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Parts []KaraokePart `json:"parts"`
	Text  string        `json:"text,omitempty"`
}

// MapKaraoke maps a segment to karaoke timing. Each word fills for its own
// duration in centiseconds, never less than one.
func MapKaraoke(seg Segment) KaraokeLine {
	line := KaraokeLine{Start: seg.Start, End: seg.End}
	for _, w := range seg.TimedWords() {
		cs := int(math.RoundToEven((*w.End - *w.Start) * 100))
		if cs < 1 {
			cs = 1
		}
		line.Parts = append(line.Parts, KaraokePart{Token: w.Token, Centisecs: cs})
	}
	if len(line.Parts) == 0 {
		line.Text = strings.TrimSpace(seg.Text)
	}
	return line
}

// Mapper turns aligned segments into subtitle events of one visual variant.
type Mapper interface {
	Styles() []Style
	Events(segs []Segment) []Event
}

// NewMapper picks the variant named by cfg.Style.
func NewMapper(cfg config.SubtitleConfig) (Mapper, error) {
	switch strings.ToLower(cfg.Style) {
	case "", "highlight":
		m, err := NewMeasurer(cfg.FontFile, float64(cfg.FontSize))
		if err != nil {
			return nil, err
		}
		return &HighlightMapper{Config: cfg, Measurer: m}, nil
	case "karaoke":
		return &KaraokeMapper{Config: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown subtitle style %q", cfg.Style)
	}
}

// HighlightMapper draws a static base caption and a boxed copy of each word
// on top of it while the word is spoken.
type HighlightMapper struct {
	Config   config.SubtitleConfig
	Measurer *Measurer
}

func (h *HighlightMapper) Styles() []Style {
	c := h.Config
	return []Style{
		{
			Name: "Base", Font: c.Font, Size: c.FontSize,
			Primary: c.PrimaryColor, Secondary: "&H000000FF", Outline: c.OutlineColor, Back: "&H64000000",
			BorderStyle: 1, OutlineWidth: 3,
			Alignment: c.Alignment, MarginL: c.MarginL, MarginR: c.MarginR, MarginV: c.MarginV,
		},
		{
			Name: "HL", Font: c.Font, Size: c.FontSize,
			Primary: c.HighlightText, Secondary: "&H000000FF", Outline: "&H00000000", Back: c.HighlightBack,
			BorderStyle: 3, OutlineWidth: 0,
			Alignment: c.Alignment, MarginL: c.MarginL, MarginR: c.MarginR, MarginV: c.MarginV,
		},
	}
}

func (h *HighlightMapper) Events(segs []Segment) []Event {
	c := h.Config
	var events []Event
	for _, seg := range segs {
		for _, ov := range mapHighlights(seg, h.Measurer) {
			style := "Base"
			if ov.Layer == LayerHighlight {
				style = "HL"
			}
			events = append(events, Event{
				Layer:   ov.Layer,
				Start:   ov.Start,
				End:     ov.End,
				Style:   style,
				MarginL: c.MarginL,
				MarginR: c.MarginR,
				MarginV: c.MarginV,
				Text:    `{\q2}` + Escape(strings.Repeat(" ", ov.Pad)+ov.Text),
			})
		}
	}
	return events
}

// Overlays returns the raw overlay intervals of all segments, with pixel
// offsets measured in the configured font.
func (h *HighlightMapper) Overlays(segs []Segment) []Overlay {
	var out []Overlay
	for _, seg := range segs {
		out = append(out, mapHighlights(seg, h.Measurer)...)
	}
	return out
}

// KaraokeMapper renders each segment as one line whose words change colour
// as they are spoken.
type KaraokeMapper struct {
	Config config.SubtitleConfig
}

func (k *KaraokeMapper) Styles() []Style {
	c := k.Config
	return []Style{{
		Name: "Kara", Font: c.Font, Size: c.FontSize,
		Primary: c.PrimaryColor, Secondary: c.KaraokeColor, Outline: c.OutlineColor, Back: "&H64000000",
		BorderStyle: 1, OutlineWidth: 3,
		Alignment: c.Alignment, MarginL: c.MarginL, MarginR: c.MarginR, MarginV: c.MarginV,
	}}
}

func (k *KaraokeMapper) Events(segs []Segment) []Event {
	var events []Event
	for _, seg := range segs {
		line := MapKaraoke(seg)

		var text string
		if len(line.Parts) > 0 {
			parts := make([]string, len(line.Parts))
			for i, p := range line.Parts {
				parts[i] = fmt.Sprintf(`{\k%d\c%s}%s`, p.Centisecs, k.Config.KaraokeColor, Escape(p.Token))
			}
			text = strings.Join(parts, " ")
		} else {
			text = Escape(line.Text)
		}
		if text == "" {
			continue
		}

		events = append(events, Event{
			Layer: LayerBase,
			Start: line.Start,
			End:   line.End,
			Style: "Kara",
			Text:  text,
		})
	}
	return events
}
