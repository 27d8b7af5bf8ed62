package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Style is one line of the [V4+ Styles] section.
type Style struct {
	Name         string
	Font         string
	Size         int
	Primary      string
	Secondary    string
	Outline      string
	Back         string
	BorderStyle  int
	OutlineWidth int
	Alignment    int
	MarginL      int
	MarginR      int
	MarginV      int
}

// Event is one Dialogue line. Text is already escaped markup.
type Event struct {
	Layer   int
	Start   float64
	End     float64
	Style   string
	MarginL int
	MarginR int
	MarginV int
	Text    string
}

// Document is a complete ASS script.
type Document struct {
	PlayResX int
	PlayResY int
	Styles   []Style
	Events   []Event
}

// NewDocument maps segs with m onto a script sized for the canvas.
func NewDocument(m Mapper, width, height int, segs []Segment) Document {
	return Document{
		PlayResX: width,
		PlayResY: height,
		Styles:   m.Styles(),
		Events:   m.Events(segs),
	}
}

// WriteASS serializes doc.
func WriteASS(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "[Script Info]\nScriptType: v4.00+\nPlayResX: %d\nPlayResY: %d\nScaledBorderAndShadow: yes\n\n", doc.PlayResX, doc.PlayResY)

	bw.WriteString("[V4+ Styles]\n")
	bw.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, " +
		"Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, " +
		"Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	for _, s := range doc.Styles {
		fmt.Fprintf(bw, "Style: %s,%s,%d,%s,%s,%s,%s,0,0,0,0,100,100,0,0,%d,%d,0,%d,%d,%d,%d,1\n",
			s.Name, s.Font, s.Size, s.Primary, s.Secondary, s.Outline, s.Back,
			s.BorderStyle, s.OutlineWidth, s.Alignment, s.MarginL, s.MarginR, s.MarginV)
	}

	bw.WriteString("\n[Events]\n")
	bw.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, e := range doc.Events {
		fmt.Fprintf(bw, "Dialogue: %d,%s,%s,%s,,%d,%d,%d,,%s\n",
			e.Layer, assTime(e.Start), assTime(e.End), e.Style, e.MarginL, e.MarginR, e.MarginV, e.Text)
	}

	return bw.Flush()
}

// WriteASSFile writes doc to path, creating parent directories.
func WriteASSFile(path string, doc Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create subtitle dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create subtitle file: %w", err)
	}
	if err := WriteASS(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("write subtitle file: %w", err)
	}
	return f.Close()
}

// Escape protects ASS override syntax in plain text.
func Escape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`{`, `\{`,
		`}`, `\}`,
		"\n", `\N`,
	)
	return r.Replace(s)
}

// assTime formats seconds as H:MM:SS.cc. Rounding happens on the total
// centisecond count so .995 carries into the next second.
func assTime(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	cs := int64(math.Round(sec * 100))
	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}
