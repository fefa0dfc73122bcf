// Package builder populates the lexicon from the word list, the frequency
// corpus and the furigana table.
package builder

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"popupdict/dictionary"
	"popupdict/model"
)

var BuildTimer = metrics.NewRegisteredTimer("lexicon.build", nil)

// Cfg configures a Builder.
type Cfg struct {
	Log *logrus.Logger
	// BatchSize is the number of keys buffered per write transaction.
	BatchSize int
}

// Stats summarizes one build.
type Stats struct {
	Words        int
	Terms        int
	MaxKeyLength int
}

// Builder writes entries into a Store. A Builder is used by one goroutine.
type Builder struct {
	store     *dictionary.Store
	res       Resources
	log       *logrus.Logger
	batchSize int
	unmapped  map[string]bool
}

func New(store *dictionary.Store, res Resources, cfg Cfg) *Builder {
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	return &Builder{
		store:     store,
		res:       res,
		log:       cfg.Log,
		batchSize: cfg.BatchSize,
		unmapped:  make(map[string]bool),
	}
}

// EnsurePopulated builds the lexicon unless a previous build completed.
// A store holding keys without the sentinel is an interrupted build and is
// cleared first. It reports whether a build ran.
func (b *Builder) EnsurePopulated(ctx context.Context) (bool, error) {
	populated, err := b.store.Populated()
	if err != nil {
		return false, err
	}
	if populated {
		b.log.Debug("lexicon already populated")
		return false, nil
	}
	empty, err := b.store.Empty()
	if err != nil {
		return false, err
	}
	if !empty {
		b.log.Warn("lexicon has entries but no completion marker, rebuilding")
		if err := b.store.Clear(); err != nil {
			return false, err
		}
	}
	if _, err := b.Build(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Build loads all three resources, inserts every entry and writes the
// sentinel last. Any failure leaves the sentinel unset.
func (b *Builder) Build(ctx context.Context) (Stats, error) {
	start := time.Now()
	defer BuildTimer.UpdateSince(start)

	ranks, err := LoadFrequencies(b.res.Frequencies)
	if err != nil {
		return Stats{}, err
	}
	furigana, err := LoadFurigana(b.res.Furigana)
	if err != nil {
		return Stats{}, err
	}
	words, err := LoadWordList(b.res.WordList)
	if err != nil {
		return Stats{}, err
	}
	b.log.WithFields(logrus.Fields{
		"words":       len(words.Words),
		"frequencies": len(ranks),
		"furigana":    len(furigana),
	}).Info("resources loaded")

	b.store.BulkLoad(true)
	defer b.store.BulkLoad(false)

	w := &writer{
		Builder:  b,
		batch:    b.store.NewBatch(b.batchSize),
		ranks:    ranks,
		furigana: furigana,
		tags:     words.Tags,
	}
	for i := range words.Words {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return w.stats, err
			}
		}
		if err := w.word(&words.Words[i]); err != nil {
			return w.stats, err
		}
		w.stats.Words++
	}
	if err := w.batch.Flush(); err != nil {
		return w.stats, err
	}
	if err := b.store.MarkPopulated(w.stats.MaxKeyLength); err != nil {
		return w.stats, err
	}

	p := message.NewPrinter(language.English)
	b.log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).
		Info(p.Sprintf("lexicon populated: %d words, %d terms, longest key %d", w.stats.Words, w.stats.Terms, w.stats.MaxKeyLength))
	return w.stats, nil
}

// writer holds the per-build state.
type writer struct {
	*Builder
	batch    *dictionary.Batch
	ranks    map[string]uint32
	furigana FuriganaTable
	tags     map[string]string
	stats    Stats
}

func (w *writer) rank(forms ...string) *uint32 {
	for _, f := range forms {
		if r, ok := w.ranks[f]; ok {
			return model.Rank(r)
		}
	}
	return nil
}

func (w *writer) insert(key, headword string, t model.DictionaryTerm) error {
	if err := w.batch.Insert(key, t); err != nil {
		return err
	}
	w.stats.Terms++
	if n := utf8.RuneCountInString(headword); n > w.stats.MaxKeyLength {
		w.stats.MaxKeyLength = n
	}
	return nil
}

// word inserts one word-list record. Every written form is paired with each
// reading that applies to it and stored under both keys; readings tied to no
// written form are stored under their reading key only.
func (w *writer) word(word *Word) error {
	for _, k := range word.Kanji {
		for _, kana := range word.Kana {
			if !appliesTo(kana.AppliesToKanji, k.Text) {
				continue
			}
			meanings := w.meanings(word.Sense, func(s *Sense) bool {
				return appliesTo(s.AppliesToKanji, k.Text)
			})
			t := model.DictionaryTerm{
				ID:       word.ID,
				Term:     k.Text,
				Reading:  kana.Text,
				Furigana: w.furigana.Get(k.Text, kana.Text),
				Meanings: meanings,
			}

			t.Frequency = w.rank(k.Text, kana.Text)
			t.Common = k.Common
			if err := w.insert(dictionary.TermKey(k.Text), k.Text, t); err != nil {
				return err
			}

			t.Frequency = w.rank(kana.Text, k.Text)
			t.Common = kana.Common
			if err := w.insert(dictionary.ReadingKey(kana.Text), kana.Text, t); err != nil {
				return err
			}
		}
	}

	for _, kana := range word.Kana {
		if len(word.Kanji) > 0 && len(kana.AppliesToKanji) > 0 {
			continue
		}
		t := model.DictionaryTerm{
			ID:        word.ID,
			Frequency: w.rank(kana.Text),
			Common:    kana.Common,
			Reading:   kana.Text,
			Meanings: w.meanings(word.Sense, func(s *Sense) bool {
				return appliesTo(s.AppliesToKana, kana.Text)
			}),
		}
		if err := w.insert(dictionary.ReadingKey(kana.Text), kana.Text, t); err != nil {
			return err
		}
	}
	return nil
}

// meanings converts the senses accepted by keep. Part-of-speech codes are
// folded to generic labels; misc codes are expanded through the word list's
// tag table and appended to info.
func (w *writer) meanings(senses []Sense, keep func(*Sense) bool) []model.DictionaryMeaning {
	var out []model.DictionaryMeaning
	for i := range senses {
		s := &senses[i]
		if !keep(s) {
			continue
		}
		var m model.DictionaryMeaning
		for _, code := range s.PartOfSpeech {
			label, ok := dictionary.GenericTag(code)
			if !ok {
				w.warnUnmapped(code)
				continue
			}
			m.Tags = append(m.Tags, label)
		}
		m.Info = append(m.Info, s.Info...)
		for _, code := range s.Misc {
			if desc, ok := w.tags[code]; ok {
				m.Info = append(m.Info, desc)
			}
		}
		for _, g := range s.Gloss {
			m.Gloss = append(m.Gloss, g.Text)
		}
		out = append(out, m)
	}
	return out
}

func (w *writer) warnUnmapped(code string) {
	if w.unmapped[code] {
		return
	}
	w.unmapped[code] = true
	w.log.WithField("code", code).Warn("part of speech has no generic tag, dropped")
}
