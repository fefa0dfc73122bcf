package dictionary

import (
	"errors"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	"popupdict/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "lexicon.db"), Cfg{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndGet(t *testing.T) {
	s := openTestStore(t)

	if err := s.Insert(TermKey("猫"), term("ねこ", true, 5)); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(TermKey("猫"), term("びょう", true, 2)); err != nil {
		t.Fatal(err)
	}

	e, err := s.Get(TermKey("猫"))
	if err != nil {
		t.Fatal(err)
	}
	if e == nil || len(e.Terms) != 2 {
		t.Fatalf("entry = %+v, want 2 terms", e)
	}
	if e.Terms[0].Reading != "びょう" {
		t.Errorf("first term = %s, want びょう (lower rank first)", e.Terms[0].Reading)
	}
}

func TestKeyFamiliesAreSeparate(t *testing.T) {
	s := openTestStore(t)
	if err := s.Insert(TermKey("猫"), term("ねこ", true, 1)); err != nil {
		t.Fatal(err)
	}

	e, err := s.Get(ReadingKey("猫"))
	if err != nil {
		t.Fatal(err)
	}
	if e != nil {
		t.Errorf("reading:猫 = %+v, want absent", e)
	}

	e, err = s.Lookup("猫")
	if err != nil || e == nil {
		t.Fatalf("Lookup(猫) = %v, %v; want hit", e, err)
	}

	ok, err := s.Contains("ねこ")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("ねこ was only inserted as a term reading, not as a key")
	}
}

func TestLookupFallsBackToReading(t *testing.T) {
	s := openTestStore(t)
	if err := s.Insert(ReadingKey("ねこ"), term("ねこ", true, 1)); err != nil {
		t.Fatal(err)
	}
	e, err := s.Lookup("ねこ")
	if err != nil || e == nil {
		t.Fatalf("Lookup(ねこ) = %v, %v; want hit", e, err)
	}
}

func TestCorruptRecordIsNotAMiss(t *testing.T) {
	s := openTestStore(t)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(lexiconBucket).Put([]byte(TermKey("壊")), []byte{codecVersion, 5, 1})
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Get(TermKey("壊"))
	var ce *CorruptionError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *CorruptionError", err)
	}
	if ce.Key != TermKey("壊") {
		t.Errorf("key = %q", ce.Key)
	}
	if !errors.Is(err, ErrCorrupt) {
		t.Error("errors.Is(err, ErrCorrupt) = false")
	}

	if _, err := s.Lookup("壊"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Lookup err = %v, want corruption", err)
	}
	if err := s.Insert(TermKey("壊"), term("こわ", true, 1)); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Insert err = %v, want corruption", err)
	}
}

func TestInsertInvalidatesCache(t *testing.T) {
	s := openTestStore(t)
	if e, _ := s.Get(TermKey("犬")); e != nil {
		t.Fatal("unexpected entry")
	}
	if err := s.Insert(TermKey("犬"), term("いぬ", true, 1)); err != nil {
		t.Fatal(err)
	}
	if e, _ := s.Get(TermKey("犬")); e == nil {
		t.Fatal("cached miss survived insert")
	}
}

func TestSentinelAndClear(t *testing.T) {
	s := openTestStore(t)

	if empty, _ := s.Empty(); !empty {
		t.Fatal("new store not empty")
	}
	if err := s.Insert(TermKey("犬"), term("いぬ", true, 1)); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Populated(); ok {
		t.Fatal("populated before MarkPopulated")
	}
	if got, err := s.MaxKeyLength(); err != nil || got != DefaultMaxKeyLength {
		t.Errorf("MaxKeyLength = %d, want default %d", got, DefaultMaxKeyLength)
	}

	if err := s.MarkPopulated(12); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Populated(); !ok {
		t.Fatal("sentinel missing after MarkPopulated")
	}
	if got, err := s.MaxKeyLength(); err != nil || got != 12 {
		t.Errorf("MaxKeyLength = %d, want 12", got)
	}

	n := 0
	if err := s.ForEach(func(string, *model.DictionaryEntry) error { n++; return nil }); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("ForEach visited %d entries, want 1 (sentinel skipped)", n)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if empty, _ := s.Empty(); !empty {
		t.Error("store not empty after Clear")
	}
	if ok, _ := s.Populated(); ok {
		t.Error("sentinel survived Clear")
	}
	if e, _ := s.Get(TermKey("犬")); e != nil {
		t.Error("cached entry survived Clear")
	}
}

func TestBatchMatchesInsert(t *testing.T) {
	direct := openTestStore(t)
	batched := openTestStore(t)
	b := batched.NewBatch(2)

	inserts := []struct {
		key string
		t   model.DictionaryTerm
	}{
		{TermKey("上"), term("うえ", true, 40)},
		{TermKey("上"), term("かみ", true, 3)},
		{ReadingKey("うえ"), term("うえ", false, -1)},
		{TermKey("上"), term("じょう", false, 9)},
		{TermKey("上"), term("ほとり", true, -1)},
	}
	for _, in := range inserts {
		if err := direct.Insert(in.key, in.t); err != nil {
			t.Fatal(err)
		}
		if err := b.Insert(in.key, in.t); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}
	if b.Pending() != 0 {
		t.Errorf("pending = %d after flush", b.Pending())
	}

	for _, key := range []string{TermKey("上"), ReadingKey("うえ")} {
		want, _ := direct.Get(key)
		got, _ := batched.Get(key)
		if got == nil || want == nil {
			t.Fatalf("%s missing", key)
		}
		if g, w := readings(got.Terms), readings(want.Terms); len(g) != len(w) {
			t.Fatalf("%s: %v vs %v", key, g, w)
		} else {
			for i := range w {
				if g[i] != w[i] {
					t.Errorf("%s: batched %v, direct %v", key, g, w)
					break
				}
			}
		}
	}
}

func TestMaxKeyLengthReportsFailures(t *testing.T) {
	s := openTestStore(t)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put(maxKeyLenKey, []byte{0x80})
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.MaxKeyLength(); !errors.Is(err, ErrCorrupt) {
		t.Errorf("malformed value: err = %v, want corruption", err)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if n, err := s.MaxKeyLength(); err == nil {
		t.Errorf("closed store: MaxKeyLength = %d, want error", n)
	}
}
