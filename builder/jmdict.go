package builder

import (
	"bufio"
	"fmt"
	"os"

	jmdict "github.com/yomidevs/jmdict-go"
)

// commonPriorities are the ke_pri/re_pri markers that make a form common.
var commonPriorities = map[string]bool{
	"news1": true,
	"ichi1": true,
	"spec1": true,
	"spec2": true,
	"gai1":  true,
}

// LoadJMdictXML reads the EDRDG JMdict XML release and converts it to the
// same shape as the JSON word list.
func LoadJMdictXML(path string) (*WordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ResourceError{Resource: WordListResource, Path: path, Err: err}
	}
	defer f.Close()

	dict, entities, err := jmdict.LoadJmdictNoTransform(bufio.NewReaderSize(f, 1<<16))
	if err != nil {
		return nil, &ResourceError{Resource: WordListResource, Path: path, Err: err}
	}
	if len(dict.Entries) == 0 {
		return nil, &ResourceError{Resource: WordListResource, Path: path, Err: fmt.Errorf("no entries")}
	}
	return convertJMdict(dict, entities), nil
}

// convertJMdict expects undecoded entities, so pos and misc hold their codes.
func convertJMdict(dict jmdict.Jmdict, entities map[string]string) *WordList {
	wl := &WordList{Tags: entities, Words: make([]Word, 0, len(dict.Entries))}
	for _, e := range dict.Entries {
		w := Word{ID: fmt.Sprint(e.Sequence)}
		for _, k := range e.Kanji {
			w.Kanji = append(w.Kanji, Kanji{Common: isCommon(k.Priorities), Text: k.Expression})
		}
		for _, r := range e.Readings {
			kana := Kana{Common: isCommon(r.Priorities), Text: r.Reading}
			switch {
			case r.NoKanji != nil:
			case len(r.Restrictions) > 0:
				kana.AppliesToKanji = r.Restrictions
			default:
				kana.AppliesToKanji = []string{wildcard}
			}
			w.Kana = append(w.Kana, kana)
		}

		var prevPOS []string
		for _, s := range e.Sense {
			pos := s.PartsOfSpeech
			if len(pos) == 0 {
				// An omitted pos carries over from the previous sense.
				pos = prevPOS
			}
			prevPOS = pos

			sense := Sense{
				PartOfSpeech:   pos,
				Misc:           s.Misc,
				Info:           s.Information,
				AppliesToKanji: orWildcard(s.RestrictedKanji),
				AppliesToKana:  orWildcard(s.RestrictedReadings),
			}
			for _, g := range s.Glossary {
				sense.Gloss = append(sense.Gloss, Gloss{Text: g.Content})
			}
			w.Sense = append(w.Sense, sense)
		}
		wl.Words = append(wl.Words, w)
	}
	return wl
}

func isCommon(priorities []string) bool {
	for _, p := range priorities {
		if commonPriorities[p] {
			return true
		}
	}
	return false
}

func orWildcard(list []string) []string {
	if len(list) == 0 {
		return []string{wildcard}
	}
	return list
}
