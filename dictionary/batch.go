package dictionary

import (
	"time"

	bolt "go.etcd.io/bbolt"

	"popupdict/model"
)

const flushThreshold = 4096

// Batch buffers inserts and writes them in one transaction per flush.
// Ordering matches Store.Insert. Not safe for concurrent use.
type Batch struct {
	s         *Store
	pending   map[string]*model.DictionaryEntry
	threshold int
}

// NewBatch starts a buffered writer. threshold <= 0 uses the default.
func (s *Store) NewBatch(threshold int) *Batch {
	if threshold <= 0 {
		threshold = flushThreshold
	}
	return &Batch{
		s:         s,
		pending:   make(map[string]*model.DictionaryEntry),
		threshold: threshold,
	}
}

// Insert adds t to the entry at key.
func (b *Batch) Insert(key string, t model.DictionaryTerm) error {
	start := time.Now()
	defer InsertTimer.UpdateSince(start)

	e, ok := b.pending[key]
	if !ok {
		stored, err := b.s.read(key)
		if err != nil {
			return err
		}
		e = &model.DictionaryEntry{}
		if stored != nil {
			e = stored
		}
		b.pending[key] = e
	}
	e.Terms = InsertRanked(e.Terms, t)
	TermsStored.Inc(1)

	if len(b.pending) >= b.threshold {
		return b.Flush()
	}
	return nil
}

// Pending returns the number of buffered keys.
func (b *Batch) Pending() int {
	return len(b.pending)
}

// Flush writes every buffered entry.
func (b *Batch) Flush() error {
	if len(b.pending) == 0 {
		return nil
	}
	err := b.s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(lexiconBucket)
		for key, e := range b.pending {
			if err := bkt.Put([]byte(key), EncodeEntry(e)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if b.s.cache != nil {
		for key := range b.pending {
			b.s.cache.Remove(key)
		}
	}
	b.s.log.WithField("keys", len(b.pending)).Debug("lexicon batch flushed")
	b.pending = make(map[string]*model.DictionaryEntry)
	return nil
}
