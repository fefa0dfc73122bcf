package tokenize

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rcrowley/go-metrics"

	"popupdict/model"
)

// DefaultMaxWindow is the longest headword of the reference lexicon, in
// characters.
const DefaultMaxWindow = 37

var MergeTimer = metrics.NewRegisteredTimer("tokenize.merge", nil)

// Lexicon answers whether a string exists under either key family.
type Lexicon interface {
	Contains(word string) (bool, error)
}

// Merger coalesces raw units into the longest spans the lexicon knows.
type Merger struct {
	Lexicon Lexicon
	// MaxWindow bounds both the number of units per span and the length of
	// a looked-up key, in characters. Zero uses DefaultMaxWindow.
	MaxWindow int
}

// Merge scans units left to right. At each non-particle unit it tries spans
// from longest to shortest; the first span whose surface, lemma or tail
// variant is in the lexicon becomes one token. Particles are never absorbed.
// Lexicon errors abort the merge.
func (m *Merger) Merge(units []Token) ([]Token, error) {
	start := time.Now()
	defer MergeTimer.UpdateSince(start)

	out := make([]Token, 0, len(units))
	for i := 0; i < len(units); {
		if units[i].Validity == model.Valid {
			out = append(out, units[i])
			i++
			continue
		}
		merged, w, err := m.longest(units[i:])
		if err != nil {
			return nil, err
		}
		if w == 0 {
			out = append(out, units[i])
			i++
			continue
		}
		out = append(out, merged)
		i += w
	}
	return out, nil
}

func (m *Merger) maxWindow() int {
	if m.MaxWindow > 0 {
		return m.MaxWindow
	}
	return DefaultMaxWindow
}

// longest returns the merged token for the longest matching span at the
// head of units and its width, or width 0 when nothing matches.
func (m *Merger) longest(units []Token) (Token, int, error) {
	limit := m.maxWindow()
	width := min(len(units), limit)
	for j := 1; j < width; j++ {
		if units[j].Validity == model.Valid {
			width = j
			break
		}
	}
	for w := width; w > 0; w-- {
		span := units[:w]
		var surface, lemma, tail, reading strings.Builder
		for j, u := range span {
			surface.WriteString(u.InputWord)
			lemma.WriteString(u.DeinflectedWord)
			reading.WriteString(u.Reading)
			if j < w-1 {
				tail.WriteString(u.InputWord)
			} else {
				tail.WriteString(u.DeinflectedWord)
			}
		}

		// A surface hit still reports the concatenated lemma.
		candidates := [...]struct{ key, deinflected string }{
			{surface.String(), lemma.String()},
			{lemma.String(), lemma.String()},
			{tail.String(), tail.String()},
		}
		for _, c := range candidates {
			if c.key == "" || utf8.RuneCountInString(c.key) > limit {
				continue
			}
			ok, err := m.Lexicon.Contains(c.key)
			if err != nil {
				return Token{}, 0, err
			}
			if !ok {
				continue
			}
			return Token{
				InputWord:       surface.String(),
				DeinflectedWord: c.deinflected,
				Conjugations:    mergeForms(span),
				Validity:        model.Unknown,
				POS:             span[0].POS,
				Reading:         reading.String(),
				Start:           span[0].Start,
				End:             span[w-1].End,
			}, w, nil
		}
	}
	return Token{}, 0, nil
}

// mergeForms returns the conjugation tags of span, de-duplicated in order
// of first appearance.
func mergeForms(span []Token) []string {
	seen := make(map[string]bool)
	var forms []string
	for _, u := range span {
		for _, f := range u.Conjugations {
			if seen[f] {
				continue
			}
			seen[f] = true
			forms = append(forms, f)
		}
	}
	return forms
}
