// Package analyze turns merged tokens into display-ready words.
package analyze

import (
	"context"
	"slices"
	"strings"

	"popupdict/dictionary"
	"popupdict/ingest"
	"popupdict/kanji"
	"popupdict/lookup"
	"popupdict/model"
	"popupdict/tokenize"
)

// Analysis represents the result of resolving every token of a sentence.
type Analysis struct {
	SentenceID  string `json:"sentence_id"`
	TokenCount  int    `json:"token_count"`
	Definitions int    `json:"definitions_found"`
	Words       []Word `json:"words"`
}

// Word is one token with its resolved dictionary terms. Forms is the
// conjugation label line, "*" for uninflected tokens.
type Word struct {
	Token model.Token `json:"token"`
	Forms string      `json:"forms"`
	Step  lookup.Step `json:"step"`
	Key   string      `json:"key,omitempty"`
	Terms []Term      `json:"terms,omitempty"`
}

// Term is a DictionaryTerm prepared for display.
type Term struct {
	ID        string  `json:"id"`
	Term      string  `json:"term,omitempty"`
	Reading   string  `json:"reading"`
	Ruby      string  `json:"ruby"`
	Common    bool    `json:"common"`
	Frequency *uint32 `json:"frequency,omitempty"`
	Groups    []Group `json:"groups,omitempty"`
}

// Group is a run of consecutive meanings sharing the same tags.
type Group struct {
	Tags         []string `json:"tags,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
	Senses       []Sense  `json:"senses"`
}

// Sense is one numbered meaning. Numbering restarts in each group.
type Sense struct {
	Number int      `json:"number"`
	Gloss  []string `json:"gloss"`
	Info   []string `json:"info,omitempty"`
}

// Analyze resolves each token against lex. Invalid tokens are not looked
// up. A store error aborts the analysis.
func Analyze(ctx context.Context, sentence ingest.Sentence, lex lookup.Lexicon, tokens []model.Token) (Analysis, error) {
	a := Analysis{
		SentenceID: sentence.ID,
		TokenCount: len(tokens),
		Words:      make([]Word, 0, len(tokens)),
	}
	for _, tok := range tokens {
		w := Word{Token: tok, Forms: tokenize.FormsString(tok.Conjugations)}
		if tok.IsValid() {
			res, err := lookup.Resolve(ctx, lex, tok)
			if err != nil {
				return Analysis{}, err
			}
			if res.Found() {
				a.Definitions++
				w.Step = res.Step
				w.Key = res.Key
				for _, t := range lookup.Prioritize(tok, res.Entry) {
					w.Terms = append(w.Terms, termView(t))
				}
			}
		}
		a.Words = append(a.Words, w)
	}
	return a, nil
}

func termView(t model.DictionaryTerm) Term {
	return Term{
		ID:        t.ID,
		Term:      t.Term,
		Reading:   t.Reading,
		Ruby:      Ruby(t),
		Common:    t.Common,
		Frequency: t.Frequency,
		Groups:    GroupMeanings(t.Meanings),
	}
}

// GroupMeanings splits meanings into runs with identical tags.
func GroupMeanings(meanings []model.DictionaryMeaning) []Group {
	var groups []Group
	for i, m := range meanings {
		if i == 0 || !slices.Equal(m.Tags, meanings[i-1].Tags) {
			g := Group{Tags: m.Tags}
			for _, tag := range m.Tags {
				g.Descriptions = append(g.Descriptions, dictionary.TagDescription(tag))
			}
			groups = append(groups, g)
		}
		g := &groups[len(groups)-1]
		g.Senses = append(g.Senses, Sense{
			Number: len(g.Senses) + 1,
			Gloss:  m.Gloss,
			Info:   m.Info,
		})
	}
	return groups
}

// Ruby renders a term as bracketed furigana, e.g. "[食|た]べる". A term
// without furigana is one unaligned "[term|reading]" pair. A reading-only
// term is its bare reading and a term without kanji is returned as written.
func Ruby(t model.DictionaryTerm) string {
	if t.Term == "" {
		return t.Reading
	}
	if !kanji.HasKanji(t.Term) {
		return t.Term
	}
	if t.Furigana == nil {
		return "[" + t.Term + "|" + t.Reading + "]"
	}
	var out strings.Builder
	for _, f := range t.Furigana {
		if f.Rt != "" {
			out.WriteString("[" + f.Ruby + "|" + f.Rt + "]")
		} else {
			out.WriteString(f.Ruby)
		}
	}
	return out.String()
}
