// Package lookup finds the dictionary entry to display for a token.
package lookup

import (
	"context"

	"popupdict/model"
)

// Lexicon reads an entry by word, trying the written-form key and then the
// reading key. A miss is (nil, nil).
type Lexicon interface {
	Lookup(word string) (*model.DictionaryEntry, error)
}

// Step identifies which candidate of the fallback chain matched.
type Step int

const (
	NoMatch Step = iota
	Lemma
	Surface
	LemmaTrimmed
	SurfaceTrimmed
)

func (s Step) String() string {
	switch s {
	case Lemma:
		return "lemma"
	case Surface:
		return "surface"
	case LemmaTrimmed:
		return "lemma-1"
	case SurfaceTrimmed:
		return "surface-1"
	default:
		return "none"
	}
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the outcome of Resolve. Entry is nil when nothing matched.
type Result struct {
	Entry *model.DictionaryEntry `json:"entry,omitempty"`
	Key   string                 `json:"key,omitempty"`
	Step  Step                   `json:"step"`
}

func (r Result) Found() bool { return r.Entry != nil }

// Resolve tries, in order, the token's lemma, its surface, the lemma without
// its last character and the surface without its last character. The first
// hit wins. No match is not an error; store errors are returned as is.
func Resolve(ctx context.Context, lex Lexicon, tok model.Token) (Result, error) {
	chain := [...]struct {
		step Step
		word string
	}{
		{Lemma, tok.DeinflectedWord},
		{Surface, tok.InputWord},
		{LemmaTrimmed, trimLast(tok.DeinflectedWord)},
		{SurfaceTrimmed, trimLast(tok.InputWord)},
	}
	for _, c := range chain {
		if c.word == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		e, err := lex.Lookup(c.word)
		if err != nil {
			return Result{}, err
		}
		if e != nil {
			return Result{Entry: e, Key: c.word, Step: c.step}, nil
		}
	}
	return Result{}, nil
}

// trimLast drops the final character of s.
func trimLast(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return ""
	}
	return string(r[:len(r)-1])
}

// Prioritize orders an entry's terms for display: kana-only terms read as
// the surface, kana-only terms read as the lemma, written terms read as the
// surface, written terms read as the lemma, then the rest. Entry order is
// kept within each group.
func Prioritize(tok model.Token, e *model.DictionaryEntry) []model.DictionaryTerm {
	if e == nil {
		return nil
	}
	var groups [5][]model.DictionaryTerm
	for _, t := range e.Terms {
		p := priority(tok, t)
		groups[p] = append(groups[p], t)
	}
	out := make([]model.DictionaryTerm, 0, len(e.Terms))
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func priority(tok model.Token, t model.DictionaryTerm) int {
	kanaOnly := t.Term == ""
	switch {
	case kanaOnly && t.Reading == tok.InputWord:
		return 0
	case kanaOnly && t.Reading == tok.DeinflectedWord:
		return 1
	case !kanaOnly && t.Reading == tok.InputWord:
		return 2
	case !kanaOnly && t.Reading == tok.DeinflectedWord:
		return 3
	}
	return 4
}
