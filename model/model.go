package model

import (
	"encoding/json"
	"fmt"
)

// Validity classifies a token for dictionary purposes.
type Validity int

const (
	// Unknown marks content words whose dictionary status is not yet resolved.
	Unknown Validity = iota
	// Valid marks closed-class function words (particles). Never merged.
	Valid
	// Invalid marks punctuation, symbols and unrecognized script.
	Invalid
)

func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

func (v Validity) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Validity) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "valid":
		*v = Valid
	case "invalid":
		*v = Invalid
	case "unknown", "":
		*v = Unknown
	default:
		return fmt.Errorf("unknown validity %q", s)
	}
	return nil
}

// Token represents a unit of segmented input, either a raw segmenter unit or
// a span merged against the lexicon.
type Token struct {
	InputWord       string   `json:"input_word"`
	DeinflectedWord string   `json:"deinflected_word"`
	Conjugations    []string `json:"conjugations,omitempty"`
	Validity        Validity `json:"validity"`
	POS             string   `json:"pos,omitempty"`
	Reading         string   `json:"reading,omitempty"`
	Start           int      `json:"start"`
	End             int      `json:"end"`
}

// IsValid reports whether the token may be a word. Unknown tokens count.
func (t Token) IsValid() bool {
	return t.Validity != Invalid
}

// Furigana is one ruby segment of a written form.
type Furigana struct {
	Ruby string `json:"ruby"`
	Rt   string `json:"rt,omitempty"`
}

// DictionaryMeaning is one sense of a headword.
type DictionaryMeaning struct {
	Tags  []string `json:"tags,omitempty"`
	Info  []string `json:"info,omitempty"`
	Gloss []string `json:"gloss,omitempty"`
}

// DictionaryTerm is one spelling/reading pair of a headword.
// An empty Term means the reading stands alone.
type DictionaryTerm struct {
	ID        string              `json:"id"`
	Frequency *uint32             `json:"frequency,omitempty"`
	Common    bool                `json:"common"`
	Term      string              `json:"term,omitempty"`
	Reading   string              `json:"reading"`
	Furigana  []Furigana          `json:"furigana,omitempty"`
	Meanings  []DictionaryMeaning `json:"meanings,omitempty"`
}

// Ranked reports whether the term carries a frequency rank.
func (t DictionaryTerm) Ranked() bool {
	return t.Frequency != nil
}

// Rank returns a pointer to n, for filling DictionaryTerm.Frequency.
func Rank(n uint32) *uint32 {
	return &n
}

// DictionaryEntry holds every term stored under one lookup key.
type DictionaryEntry struct {
	Terms []DictionaryTerm `json:"terms"`
}
