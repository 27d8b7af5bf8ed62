package subtitles

import "strings"

// Word is one aligned token. Start or End is nil when the aligner could not
// place the word (punctuation, silence).
type Word struct {
	Token string   `json:"word"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

// Timed reports whether both timestamps are present.
func (w Word) Timed() bool {
	return w.Start != nil && w.End != nil
}

// Segment is one caption line with its aligned words.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words"`
}

// TimedWords returns the words that carry both timestamps and a non-blank
// token, trimmed, in input order.
func (s Segment) TimedWords() []Word {
	var out []Word
	for _, w := range s.Words {
		if !w.Timed() {
			continue
		}
		tok := strings.TrimSpace(w.Token)
		if tok == "" {
			continue
		}
		w.Token = tok
		out = append(out, w)
	}
	return out
}

// At is a helper for building Words in code: it returns a pointer to v.
func At(v float64) *float64 {
	return &v
}
