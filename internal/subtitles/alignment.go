package subtitles

import (
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// ReadAlignment loads word timings from a JSON file shaped like aligner
// output: {"segments":[{"start","end","text","words":[{"word","start","end"}]}]}.
// A bare top-level array of segments is accepted too. Missing or null word
// timestamps are kept as nil.
func ReadAlignment(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alignment: %w", err)
	}
	return ParseAlignment(data)
}

// ParseAlignment is ReadAlignment on an in-memory document.
func ParseAlignment(data []byte) ([]Segment, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("alignment is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	segs := root.Get("segments")
	if !segs.Exists() {
		if !root.IsArray() {
			return nil, fmt.Errorf("alignment has no segments")
		}
		segs = root
	}

	var out []Segment
	segs.ForEach(func(_, s gjson.Result) bool {
		seg := Segment{
			Start: s.Get("start").Float(),
			End:   s.Get("end").Float(),
			Text:  s.Get("text").String(),
		}
		s.Get("words").ForEach(func(_, w gjson.Result) bool {
			seg.Words = append(seg.Words, Word{
				Token: w.Get("word").String(),
				Start: optionalFloat(w.Get("start")),
				End:   optionalFloat(w.Get("end")),
			})
			return true
		})
		out = append(out, seg)
		return true
	})
	return out, nil
}

func optionalFloat(r gjson.Result) *float64 {
	if r.Type != gjson.Number {
		return nil
	}
	v := r.Float()
	return &v
}

// EvenSentences builds timings without an aligner: the text is split into
// sentences that share the duration evenly, and inside each sentence words
// get time in proportion to their length.
func EvenSentences(text string, duration float64) []Segment {
	sentences := splitSentences(text)
	if len(sentences) == 0 || duration <= 0 {
		return nil
	}

	per := duration / float64(len(sentences))
	out := make([]Segment, 0, len(sentences))
	for i, sentence := range sentences {
		start := float64(i) * per
		end := start + per
		if i == len(sentences)-1 {
			end = duration
		}

		seg := Segment{Start: start, End: end, Text: sentence}
		tokens := strings.Fields(sentence)

		total := 0
		for _, tok := range tokens {
			total += utf8.RuneCountInString(tok)
		}

		at := start
		for j, tok := range tokens {
			share := (end - start) * float64(utf8.RuneCountInString(tok)) / float64(total)
			wEnd := at + share
			if j == len(tokens)-1 {
				wEnd = end
			}
			seg.Words = append(seg.Words, Word{Token: tok, Start: At(at), End: At(wEnd)})
			at = wEnd
		}
		out = append(out, seg)
	}
	return out
}

// splitSentences cuts on '.', '!' and '?', keeping the terminator with its
// sentence and dropping empty pieces.
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" && strings.IndexFunc(s, isWordRune) >= 0 {
			out = append(out, s)
		}
		b.Reset()
	}

	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
