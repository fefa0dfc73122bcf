package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"popupdict/dictionary"
	"popupdict/model"
)

const wordListJSON = `{
  "tags": {"uk": "word usually written using kana alone", "col": "colloquial"},
  "words": [
    {
      "id": "1467640",
      "kanji": [{"common": true, "text": "猫"}],
      "kana": [{"common": true, "text": "ねこ", "appliesToKanji": ["*"]}],
      "sense": [
        {"partOfSpeech": ["n"], "misc": ["uk"], "info": [], "appliesToKanji": ["*"], "appliesToKana": ["*"],
         "gloss": [{"text": "cat"}]},
        {"partOfSpeech": ["n", "zzz"], "misc": ["col", "nope"], "info": ["from the shamisen"], "appliesToKanji": ["*"], "appliesToKana": ["*"],
         "gloss": [{"text": "shamisen"}]}
      ]
    },
    {
      "id": "1000",
      "kanji": [{"common": false, "text": "上"}, {"common": false, "text": "上え"}],
      "kana": [
        {"common": false, "text": "うえ", "appliesToKanji": ["上"]},
        {"common": false, "text": "かみ", "appliesToKanji": ["*"]},
        {"common": true, "text": "ウエ", "appliesToKanji": []}
      ],
      "sense": [
        {"partOfSpeech": ["n"], "appliesToKanji": ["上"], "appliesToKana": ["*"], "gloss": [{"text": "above"}]},
        {"partOfSpeech": ["adv"], "appliesToKanji": ["*"], "appliesToKana": ["ウエ"], "gloss": [{"text": "up"}]}
      ]
    },
    {
      "id": "2000",
      "kana": [{"common": true, "text": "ああ", "appliesToKanji": ["*"]}],
      "sense": [{"partOfSpeech": ["int"], "appliesToKanji": ["*"], "appliesToKana": ["*"], "gloss": [{"text": "ah!"}]}]
    }
  ]
}`

const frequencies = "ああ\nかみ\n猫\nうえ\nねこ\n猫\n"

const furiganaJSON = "\xef\xbb\xbf" + `[
  {"text": "猫", "reading": "ねこ", "furigana": [{"ruby": "猫", "rt": "ねこ"}]},
  {"text": "上", "reading": "うえ", "furigana": [{"ruby": "上", "rt": "うえ"}]}
]`

func writeFixtures(t *testing.T) Resources {
	t.Helper()
	dir := t.TempDir()
	res := Resources{
		WordList:    filepath.Join(dir, "jmdict.json"),
		Frequencies: filepath.Join(dir, "freq.txt"),
		Furigana:    filepath.Join(dir, "furigana.json"),
	}
	for path, body := range map[string]string{
		res.WordList:    wordListJSON,
		res.Frequencies: frequencies,
		res.Furigana:    furiganaJSON,
	} {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return res
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func newTestBuilder(t *testing.T, res Resources) (*Builder, *dictionary.Store) {
	t.Helper()
	s, err := dictionary.Open(filepath.Join(t.TempDir(), "lexicon.db"), dictionary.Cfg{Log: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s, res, Cfg{Log: quietLogger(), BatchSize: 2}), s
}

func mustGet(t *testing.T, s *dictionary.Store, key string) *model.DictionaryEntry {
	t.Helper()
	e, err := s.Get(key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	if e == nil {
		t.Fatalf("%s missing", key)
	}
	return e
}

func dump(t *testing.T, s *dictionary.Store) map[string]*model.DictionaryEntry {
	t.Helper()
	out := make(map[string]*model.DictionaryEntry)
	err := s.ForEach(func(key string, e *model.DictionaryEntry) error {
		out[key] = e
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestBuildStoresBothKeyFamilies(t *testing.T) {
	b, s := newTestBuilder(t, writeFixtures(t))
	stats, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Words != 3 {
		t.Errorf("words = %d, want 3", stats.Words)
	}
	if ok, _ := s.Populated(); !ok {
		t.Fatal("sentinel not written")
	}

	cat := mustGet(t, s, dictionary.TermKey("猫")).Terms[0]
	if cat.ID != "1467640" || cat.Term != "猫" || cat.Reading != "ねこ" || !cat.Common {
		t.Errorf("term:猫 = %+v", cat)
	}
	if !reflect.DeepEqual(cat.Furigana, []model.Furigana{{Ruby: "猫", Rt: "ねこ"}}) {
		t.Errorf("furigana = %+v", cat.Furigana)
	}
	if len(cat.Meanings) != 2 {
		t.Fatalf("meanings = %+v", cat.Meanings)
	}
	first := cat.Meanings[0]
	if !reflect.DeepEqual(first.Tags, []string{"noun"}) ||
		!reflect.DeepEqual(first.Info, []string{"word usually written using kana alone"}) ||
		!reflect.DeepEqual(first.Gloss, []string{"cat"}) {
		t.Errorf("first meaning = %+v", first)
	}
	second := cat.Meanings[1]
	if !reflect.DeepEqual(second.Tags, []string{"noun"}) {
		t.Errorf("unmapped code kept: %v", second.Tags)
	}
	if !reflect.DeepEqual(second.Info, []string{"from the shamisen", "colloquial"}) {
		t.Errorf("info = %v", second.Info)
	}

	if e := mustGet(t, s, dictionary.ReadingKey("ねこ")); e.Terms[0].Term != "猫" {
		t.Errorf("reading:ねこ = %+v", e.Terms[0])
	}
	ah := mustGet(t, s, dictionary.ReadingKey("ああ")).Terms[0]
	if ah.Term != "" || ah.Reading != "ああ" || ah.Frequency == nil || *ah.Frequency != 0 {
		t.Errorf("reading:ああ = %+v", ah)
	}
	if e, _ := s.Get(dictionary.TermKey("ああ")); e != nil {
		t.Error("kana-only word stored under a term key")
	}
}

func TestBuildHonorsRestrictions(t *testing.T) {
	b, s := newTestBuilder(t, writeFixtures(t))
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatal(err)
	}

	// うえ applies to 上 only; かみ applies to both written forms.
	var got []string
	for _, term := range mustGet(t, s, dictionary.TermKey("上え")).Terms {
		got = append(got, term.Reading)
	}
	if !reflect.DeepEqual(got, []string{"かみ"}) {
		t.Errorf("term:上え readings = %v, want [かみ]", got)
	}

	// The first sense is restricted to 上.
	for _, term := range mustGet(t, s, dictionary.TermKey("上え")).Terms {
		if len(term.Meanings) != 1 || term.Meanings[0].Gloss[0] != "up" {
			t.Errorf("term:上え meanings = %+v", term.Meanings)
		}
	}

	// ウエ is tied to no written form.
	ue := mustGet(t, s, dictionary.ReadingKey("ウエ")).Terms
	if len(ue) != 1 || ue[0].Term != "" || !ue[0].Common {
		t.Fatalf("reading:ウエ = %+v", ue)
	}
	// Reading-only terms filter senses by reading, not by written form.
	if len(ue[0].Meanings) != 2 || ue[0].Meanings[1].Tags[0] != "adverb" {
		t.Errorf("reading:ウエ meanings = %+v", ue[0].Meanings)
	}
}

func TestBuildFrequencyPreference(t *testing.T) {
	b, s := newTestBuilder(t, writeFixtures(t))
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatal(err)
	}

	// 猫 appears twice; the later line (5) wins. ねこ is line 4.
	term := mustGet(t, s, dictionary.TermKey("猫")).Terms[0]
	if term.Frequency == nil || *term.Frequency != 5 {
		t.Errorf("term:猫 rank = %v, want 5", term.Frequency)
	}
	reading := mustGet(t, s, dictionary.ReadingKey("ねこ")).Terms[0]
	if reading.Frequency == nil || *reading.Frequency != 4 {
		t.Errorf("reading:ねこ rank = %v, want 4", reading.Frequency)
	}

	// 上え has no rank of its own and falls back to its reading.
	for _, term := range mustGet(t, s, dictionary.TermKey("上え")).Terms {
		if term.Frequency == nil || *term.Frequency != 1 {
			t.Errorf("term:上え rank = %v, want 1", term.Frequency)
		}
	}
}

func TestEnsurePopulatedRunsOnce(t *testing.T) {
	b, s := newTestBuilder(t, writeFixtures(t))
	ran, err := b.EnsurePopulated(context.Background())
	if err != nil || !ran {
		t.Fatalf("first run = %v, %v", ran, err)
	}
	before := dump(t, s)

	ran, err = b.EnsurePopulated(context.Background())
	if err != nil || ran {
		t.Fatalf("second run = %v, %v; want no build", ran, err)
	}
	if after := dump(t, s); !reflect.DeepEqual(before, after) {
		t.Error("second run changed the lexicon")
	}
}

func TestEnsurePopulatedRedoesInterruptedBuild(t *testing.T) {
	res := writeFixtures(t)
	clean, cs := newTestBuilder(t, res)
	if _, err := clean.EnsurePopulated(context.Background()); err != nil {
		t.Fatal(err)
	}

	b, s := newTestBuilder(t, res)
	// A half-written store: data present, sentinel absent.
	if err := s.Insert(dictionary.TermKey("猫"), model.DictionaryTerm{Reading: "stale"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(dictionary.TermKey("残"), model.DictionaryTerm{Reading: "stale"}); err != nil {
		t.Fatal(err)
	}

	ran, err := b.EnsurePopulated(context.Background())
	if err != nil || !ran {
		t.Fatalf("run = %v, %v", ran, err)
	}
	if e, _ := s.Get(dictionary.TermKey("残")); e != nil {
		t.Error("stale key survived rebuild")
	}
	if !reflect.DeepEqual(dump(t, cs), dump(t, s)) {
		t.Error("rebuilt lexicon differs from a clean build")
	}
}

func TestMissingResourceLeavesStoreUnpopulated(t *testing.T) {
	res := writeFixtures(t)
	res.Furigana = filepath.Join(t.TempDir(), "absent.json")
	b, s := newTestBuilder(t, res)

	_, err := b.EnsurePopulated(context.Background())
	var re *ResourceError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *ResourceError", err)
	}
	if re.Resource != FuriganaResource {
		t.Errorf("resource = %q", re.Resource)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("cause not preserved")
	}
	if ok, _ := s.Populated(); ok {
		t.Error("sentinel written after failure")
	}
}

func TestBuildStopsOnCancel(t *testing.T) {
	b, s := newTestBuilder(t, writeFixtures(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Build(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if ok, _ := s.Populated(); ok {
		t.Error("sentinel written after cancel")
	}
}

func TestBuildRecordsLongestKey(t *testing.T) {
	b, s := newTestBuilder(t, writeFixtures(t))
	stats, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.MaxKeyLength != 2 {
		t.Errorf("stats.MaxKeyLength = %d, want 2", stats.MaxKeyLength)
	}
	if got, err := s.MaxKeyLength(); err != nil || got != 2 {
		t.Errorf("stored max key length = %d (%v), want 2", got, err)
	}
}

func TestIsCommon(t *testing.T) {
	if !isCommon([]string{"nf12", "ichi1"}) {
		t.Error("ichi1 not common")
	}
	if isCommon([]string{"nf12", "ichi2", "news2"}) {
		t.Error("second-tier markers counted as common")
	}
}

// Two entities share a description, so codes can only survive if the
// decoder leaves them unexpanded.
const jmdictXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE JMdict [
<!ENTITY v1 "Ichidan verb">
<!ENTITY v1-s "Ichidan verb">
<!ENTITY uk "word usually written using kana alone">
]>
<JMdict>
<entry>
<ent_seq>1269130</ent_seq>
<k_ele><keb>呉れる</keb><ke_pri>ichi1</ke_pri></k_ele>
<r_ele><reb>くれる</reb><re_pri>ichi1</re_pri></r_ele>
<sense><pos>&v1-s;</pos><misc>&uk;</misc><gloss>to give</gloss></sense>
<sense><gloss>to do for</gloss></sense>
</entry>
</JMdict>
`

func TestLoadJMdictXMLKeepsEntityCodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "JMdict_e.xml")
	if err := os.WriteFile(path, []byte(jmdictXML), 0o644); err != nil {
		t.Fatal(err)
	}
	wl, err := LoadWordList(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(wl.Words) != 1 {
		t.Fatalf("words = %d, want 1", len(wl.Words))
	}
	w := wl.Words[0]
	if w.ID != "1269130" || len(w.Kanji) != 1 || !w.Kanji[0].Common {
		t.Errorf("word = %+v", w)
	}
	if len(w.Kana) != 1 || !reflect.DeepEqual(w.Kana[0].AppliesToKanji, []string{"*"}) {
		t.Errorf("kana = %+v", w.Kana)
	}
	if len(w.Sense) != 2 {
		t.Fatalf("senses = %d, want 2", len(w.Sense))
	}
	for i, s := range w.Sense {
		if !reflect.DeepEqual(s.PartOfSpeech, []string{"v1-s"}) {
			t.Errorf("sense %d pos = %v, want [v1-s]", i, s.PartOfSpeech)
		}
	}
	if !reflect.DeepEqual(w.Sense[0].Misc, []string{"uk"}) {
		t.Errorf("misc = %v, want [uk]", w.Sense[0].Misc)
	}
	if wl.Tags["v1"] != "Ichidan verb" || wl.Tags["uk"] != "word usually written using kana alone" {
		t.Errorf("tags = %v", wl.Tags)
	}
}
