package builder

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"popupdict/model"
)

// Resource names used in ResourceError.
const (
	WordListResource    = "word list"
	FrequencyResource   = "frequency corpus"
	FuriganaResource    = "furigana table"
	wildcard            = "*"
	maxFrequencyLineLen = 1 << 20
)

// ResourceError reports a missing or malformed build input.
type ResourceError struct {
	Resource string
	Path     string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Resource, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Resources are the local paths of the three build inputs.
type Resources struct {
	WordList    string
	Frequencies string
	Furigana    string
}

// WordList is a jmdict-simplified dump.
type WordList struct {
	Tags  map[string]string `json:"tags"`
	Words []Word            `json:"words"`
}

type Word struct {
	ID    string  `json:"id"`
	Kanji []Kanji `json:"kanji"`
	Kana  []Kana  `json:"kana"`
	Sense []Sense `json:"sense"`
}

type Kanji struct {
	Common bool   `json:"common"`
	Text   string `json:"text"`
}

// Kana is a pronunciation. An empty AppliesToKanji means the reading is not
// tied to any written form; "*" means it applies to all of them.
type Kana struct {
	Common         bool     `json:"common"`
	Text           string   `json:"text"`
	AppliesToKanji []string `json:"appliesToKanji"`
}

type Sense struct {
	PartOfSpeech   []string `json:"partOfSpeech"`
	Misc           []string `json:"misc"`
	Info           []string `json:"info"`
	AppliesToKanji []string `json:"appliesToKanji"`
	AppliesToKana  []string `json:"appliesToKana"`
	Gloss          []Gloss  `json:"gloss"`
}

type Gloss struct {
	Text string `json:"text"`
}

// appliesTo reports whether an applicability list covers s.
func appliesTo(list []string, s string) bool {
	for _, v := range list {
		if v == wildcard || v == s {
			return true
		}
	}
	return false
}

// LoadWordList reads a jmdict-simplified JSON file, or a JMdict XML file
// when the path ends in .xml.
func LoadWordList(path string) (*WordList, error) {
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return LoadJMdictXML(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &ResourceError{Resource: WordListResource, Path: path, Err: err}
	}
	defer f.Close()

	var wl WordList
	if err := json.NewDecoder(bufio.NewReaderSize(f, 1<<16)).Decode(&wl); err != nil {
		return nil, &ResourceError{Resource: WordListResource, Path: path, Err: err}
	}
	if len(wl.Words) == 0 {
		return nil, &ResourceError{Resource: WordListResource, Path: path, Err: fmt.Errorf("no words")}
	}
	return &wl, nil
}

// LoadFrequencies reads a ranked word list, one word per line. The rank is
// the zero-based line number; a repeated word keeps its later rank.
func LoadFrequencies(path string) (map[string]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ResourceError{Resource: FrequencyResource, Path: path, Err: err}
	}
	defer f.Close()

	ranks := make(map[string]uint32)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxFrequencyLineLen)
	var line uint32
	for scanner.Scan() {
		ranks[scanner.Text()] = line
		line++
	}
	if err := scanner.Err(); err != nil {
		return nil, &ResourceError{Resource: FrequencyResource, Path: path, Err: err}
	}
	return ranks, nil
}

type furiganaKey struct {
	text, reading string
}

type furiganaRecord struct {
	Text     string           `json:"text"`
	Reading  string           `json:"reading"`
	Furigana []model.Furigana `json:"furigana"`
}

// FuriganaTable maps a (written form, reading) pair to its ruby segments.
type FuriganaTable map[furiganaKey][]model.Furigana

// Get returns the segments for text read as reading, or nil.
func (t FuriganaTable) Get(text, reading string) []model.Furigana {
	return t[furiganaKey{text, reading}]
}

// LoadFurigana reads a JmdictFurigana JSON array. A leading byte order mark
// is ignored.
func LoadFurigana(path string) (FuriganaTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ResourceError{Resource: FuriganaResource, Path: path, Err: err}
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var records []furiganaRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ResourceError{Resource: FuriganaResource, Path: path, Err: err}
	}
	table := make(FuriganaTable, len(records))
	for _, r := range records {
		table[furiganaKey{r.Text, r.Reading}] = r.Furigana
	}
	return table, nil
}
