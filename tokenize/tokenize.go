// Package tokenize segments Japanese text with kagome and merges the raw
// units into spans that exist in the lexicon.
package tokenize

import (
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/dict"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome-dict/uni"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"popupdict/kanji"
	"popupdict/model"
)

// Token represents a token / morpheme produced by the segmenter or merger.
type Token = model.Token

// Backend selects the segmenter's system dictionary.
type Backend int

const (
	IPA Backend = iota
	UniDic
)

func (b Backend) String() string {
	switch b {
	case UniDic:
		return "uni"
	default:
		return "ipa"
	}
}

// ParseBackend accepts "ipa", "uni" or "unidic".
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ipa":
		return IPA, nil
	case "uni", "unidic":
		return UniDic, nil
	}
	return IPA, fmt.Errorf("unknown segmenter backend %q", s)
}

func (b Backend) dict() *dict.Dict {
	if b == UniDic {
		return uni.Dict()
	}
	return ipa.Dict()
}

// Segmenter wraps a kagome tokenizer. It is safe for concurrent use.
type Segmenter struct {
	backend Backend
	kg      *tokenizer.Tokenizer
}

func NewSegmenter(b Backend) (*Segmenter, error) {
	kg, err := tokenizer.New(b.dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("%s segmenter: %w", b, err)
	}
	return &Segmenter{backend: b, kg: kg}, nil
}

func (s *Segmenter) Backend() Backend { return s.backend }

// Segment returns the raw units of text in order. Whitespace units are
// dropped.
func (s *Segmenter) Segment(text string) []Token {
	if text == "" {
		return nil
	}
	return convertKagomeTokens(s.kg.Tokenize(text))
}

func convertKagomeTokens(ktoks []tokenizer.Token) []Token {
	out := make([]Token, 0, len(ktoks))
	for _, kt := range ktoks {
		if strings.TrimSpace(kt.Surface) == "" {
			continue
		}
		pos := kt.POS()
		lemma, ok := kt.BaseForm()
		if !ok || lemma == "" || lemma == "*" {
			lemma = kt.Surface
		}
		form, ok := kt.InflectionalForm()
		if !ok || form == "" {
			form = NoForm
		}
		reading, _ := kt.Reading()
		out = append(out, Token{
			InputWord:       kt.Surface,
			DeinflectedWord: lemma,
			Conjugations:    []string{form},
			Validity:        classify(kt.Class, pos),
			POS:             strings.Join(pos, ","),
			Reading:         kanji.KatakanaToHiragana(reading),
			Start:           kt.Start,
			End:             kt.End,
		})
	}
	return out
}

// classify derives a unit's validity from its lexical class and top-level
// part of speech.
func classify(class tokenizer.TokenClass, pos []string) model.Validity {
	if class == tokenizer.UNKNOWN || class == tokenizer.DUMMY {
		return model.Invalid
	}
	if len(pos) == 0 {
		return model.Unknown
	}
	switch pos[0] {
	case "記号", "補助記号", "空白":
		return model.Invalid
	case "助詞":
		return model.Valid
	}
	return model.Unknown
}
