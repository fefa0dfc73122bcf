// Package dictionary is the persistent lexicon: a bbolt-backed index from
// "term:<written form>" and "reading:<pronunciation>" keys to ranked entries.
package dictionary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"popupdict/model"
)

const (
	TermPrefix    = "term:"
	ReadingPrefix = "reading:"
	PopulatedFlag = "successfully_populated_flag"

	// DefaultMaxKeyLength is the longest headword of the reference lexicon,
	// in characters.
	DefaultMaxKeyLength = 37
	DefaultCacheSize    = 4096
)

var (
	lexiconBucket = []byte("lexicon")
	metaBucket    = []byte("meta")
	maxKeyLenKey  = []byte("max_key_length")
)

// ErrCorrupt matches every CorruptionError via errors.Is.
var ErrCorrupt = errors.New("corrupt lexicon record")

// CorruptionError reports a stored record that exists but cannot be decoded.
type CorruptionError struct {
	Key string
	Err error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("lexicon record %q: %v", e.Key, e.Err)
}

func (e *CorruptionError) Unwrap() error { return e.Err }

func (e *CorruptionError) Is(target error) bool { return target == ErrCorrupt }

// TermKey returns the written-form key for s.
func TermKey(s string) string { return TermPrefix + s }

// ReadingKey returns the pronunciation key for s.
func ReadingKey(s string) string { return ReadingPrefix + s }

// Cfg configures a Store.
type Cfg struct {
	Log       *logrus.Logger
	CacheSize int           // entries kept by the read cache; negative disables it
	Timeout   time.Duration // wait for the file lock held by another process
}

// Store is safe for concurrent readers. Writers are serialized by bbolt.
type Store struct {
	db    *bolt.DB
	log   *logrus.Logger
	cache *lru.Cache[string, *model.DictionaryEntry]
}

// Open opens or creates the store at path.
func Open(path string, cfg Cfg) (*Store, error) {
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("open lexicon %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(lexiconBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(metaBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, log: cfg.Log}
	if cfg.CacheSize > 0 {
		if s.cache, err = lru.New[string, *model.DictionaryEntry](cfg.CacheSize); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close releases the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get reads the entry stored at key. A missing key yields (nil, nil); an
// undecodable record yields a *CorruptionError. Returned entries are shared
// with the cache and must not be modified.
func (s *Store) Get(key string) (*model.DictionaryEntry, error) {
	if s.cache != nil {
		if e, ok := s.cache.Get(key); ok {
			return e, nil
		}
	}
	e, err := s.read(key)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(key, e)
	}
	return e, nil
}

func (s *Store) read(key string) (*model.DictionaryEntry, error) {
	var e *model.DictionaryEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(lexiconBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		var err error
		if e, err = DecodeEntry(v); err != nil {
			return &CorruptionError{Key: key, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Lookup tries the written-form key for word, then the reading key.
func (s *Store) Lookup(word string) (*model.DictionaryEntry, error) {
	start := time.Now()
	defer LookupTimer.UpdateSince(start)

	for _, key := range []string{TermKey(word), ReadingKey(word)} {
		e, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if e != nil {
			LookupHits.Mark(1)
			return e, nil
		}
	}
	LookupMiss.Mark(1)
	return nil, nil
}

// Contains reports whether word exists under either key family.
func (s *Store) Contains(word string) (bool, error) {
	e, err := s.Lookup(word)
	return e != nil, err
}

// Insert adds t to the entry at key, keeping the bucket order.
func (s *Store) Insert(key string, t model.DictionaryTerm) error {
	start := time.Now()
	defer InsertTimer.UpdateSince(start)

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(lexiconBucket)
		entry := &model.DictionaryEntry{}
		if v := b.Get([]byte(key)); v != nil {
			var err error
			if entry, err = DecodeEntry(v); err != nil {
				return &CorruptionError{Key: key, Err: err}
			}
		}
		entry.Terms = InsertRanked(entry.Terms, t)
		return b.Put([]byte(key), EncodeEntry(entry))
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Remove(key)
	}
	TermsStored.Inc(1)
	return nil
}

// Populated reports whether a build completed, i.e. the sentinel is present.
func (s *Store) Populated() (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		flag := []byte(PopulatedFlag)
		k, _ := tx.Bucket(lexiconBucket).Cursor().Seek(flag)
		ok = bytes.Equal(k, flag)
		return nil
	})
	return ok, err
}

// Empty reports whether the lexicon holds no keys at all.
func (s *Store) Empty() (bool, error) {
	var empty bool
	err := s.db.View(func(tx *bolt.Tx) error {
		k, _ := tx.Bucket(lexiconBucket).Cursor().First()
		empty = k == nil
		return nil
	})
	return empty, err
}

// Clear drops every key, including the sentinel.
func (s *Store) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{lexiconBucket, metaBucket} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Purge()
	}
	s.log.Info("lexicon cleared")
	return nil
}

// MarkPopulated records the longest key (in characters) and writes the
// sentinel, then flushes to disk.
func (s *Store) MarkPopulated(maxKeyLen int) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(metaBucket).Put(maxKeyLenKey, binary.AppendUvarint(nil, uint64(maxKeyLen))); err != nil {
			return err
		}
		return tx.Bucket(lexiconBucket).Put([]byte(PopulatedFlag), []byte{})
	})
	if err != nil {
		return err
	}
	return s.Flush()
}

// MaxKeyLength returns the longest key recorded by the last build, or
// DefaultMaxKeyLength when none was recorded.
func (s *Store) MaxKeyLength() (int, error) {
	n := DefaultMaxKeyLength
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(metaBucket).Get(maxKeyLenKey)
		if v == nil {
			return nil
		}
		m, k := binary.Uvarint(v)
		if k != len(v) || m == 0 {
			return &CorruptionError{Key: string(maxKeyLenKey), Err: fmt.Errorf("bad max key length %x", v)}
		}
		n = int(m)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// BulkLoad toggles fsync on commit. Callers must Flush when done.
func (s *Store) BulkLoad(on bool) {
	s.db.NoSync = on
}

// Flush forces written pages to disk.
func (s *Store) Flush() error {
	return s.db.Sync()
}

// ForEach calls fn for every entry in key order. The sentinel is skipped.
func (s *Store) ForEach(fn func(key string, e *model.DictionaryEntry) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(lexiconBucket).ForEach(func(k, v []byte) error {
			key := string(k)
			if key == PopulatedFlag {
				return nil
			}
			e, err := DecodeEntry(v)
			if err != nil {
				return &CorruptionError{Key: key, Err: err}
			}
			return fn(key, e)
		})
	})
}
