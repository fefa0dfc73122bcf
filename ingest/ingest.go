// Package ingest validates and normalizes query text.
package ingest

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"popupdict/kanji"
)

var (
	ErrEmpty       = errors.New("empty sentence")
	ErrNotJapanese = errors.New("no japanese text")
)

// Sentence represents an ingested Japanese sentence and metadata.
type Sentence struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// generateID creates a short random hex id. Falls back to a timestamp string on error.
func generateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// IngestSentence removes all whitespace from text, applies NFKC so
// halfwidth katakana and fullwidth ASCII match lexicon keys, and rejects
// input without kana or kanji.
func IngestSentence(text string) (Sentence, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, norm.NFKC.String(text))
	if cleaned == "" {
		return Sentence{}, ErrEmpty
	}
	if !kanji.ContainsJapanese(cleaned) {
		return Sentence{}, ErrNotJapanese
	}
	return Sentence{
		ID:        generateID(),
		Text:      cleaned,
		CreatedAt: time.Now().UTC(),
	}, nil
}
