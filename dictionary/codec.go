package dictionary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"popupdict/model"
)

// codecVersion prefixes every encoded entry.
const codecVersion byte = 2

var (
	errTruncated = errors.New("truncated record")
	errTrailing  = errors.New("trailing bytes after record")
)

// EncodeEntry serializes an entry.
// Record layout:
//
//	version (1)
//	term list length
//	per term:
//	  id, term, reading (uvarint length + bytes)
//	  ranked (1) [frequency (uvarint)]
//	  common (1)
//	  has furigana (1) [count (uvarint), per segment: ruby, rt]
//	  meaning list length, per meaning: tags, info, gloss (string lists)
//
// A list length is a uvarint holding 0 for a nil slice and len+1 otherwise,
// so nil and empty slices survive a round trip.
func EncodeEntry(e *model.DictionaryEntry) []byte {
	buf := make([]byte, 0, 64*len(e.Terms)+8)
	buf = append(buf, codecVersion)
	buf = appendListLen(buf, len(e.Terms), e.Terms == nil)
	for i := range e.Terms {
		buf = appendTerm(buf, &e.Terms[i])
	}
	return buf
}

func appendTerm(buf []byte, t *model.DictionaryTerm) []byte {
	buf = appendString(buf, t.ID)
	buf = appendString(buf, t.Term)
	buf = appendString(buf, t.Reading)
	if t.Frequency != nil {
		buf = append(buf, 1)
		buf = binary.AppendUvarint(buf, uint64(*t.Frequency))
	} else {
		buf = append(buf, 0)
	}
	buf = appendBool(buf, t.Common)
	if t.Furigana != nil {
		buf = append(buf, 1)
		buf = binary.AppendUvarint(buf, uint64(len(t.Furigana)))
		for _, f := range t.Furigana {
			buf = appendString(buf, f.Ruby)
			buf = appendString(buf, f.Rt)
		}
	} else {
		buf = append(buf, 0)
	}
	buf = appendListLen(buf, len(t.Meanings), t.Meanings == nil)
	for _, m := range t.Meanings {
		buf = appendStrings(buf, m.Tags)
		buf = appendStrings(buf, m.Info)
		buf = appendStrings(buf, m.Gloss)
	}
	return buf
}

func appendListLen(buf []byte, n int, isNil bool) []byte {
	if isNil {
		return append(buf, 0)
	}
	return binary.AppendUvarint(buf, uint64(n)+1)
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendStrings(buf []byte, ss []string) []byte {
	buf = appendListLen(buf, len(ss), ss == nil)
	for _, s := range ss {
		buf = appendString(buf, s)
	}
	return buf
}

// DecodeEntry parses a record produced by EncodeEntry.
func DecodeEntry(b []byte) (*model.DictionaryEntry, error) {
	d := decoder{b: b}
	version, err := d.byte()
	if err != nil {
		return nil, err
	}
	if version != codecVersion {
		return nil, fmt.Errorf("unsupported record version %d", version)
	}
	n, present, err := d.listLen()
	if err != nil {
		return nil, err
	}
	entry := &model.DictionaryEntry{}
	if present {
		entry.Terms = make([]model.DictionaryTerm, 0, n)
	}
	for i := 0; i < n; i++ {
		t, err := d.term()
		if err != nil {
			return nil, fmt.Errorf("term %d: %w", i, err)
		}
		entry.Terms = append(entry.Terms, t)
	}
	if d.off != len(d.b) {
		return nil, errTrailing
	}
	return entry, nil
}

type decoder struct {
	b   []byte
	off int
}

func (d *decoder) byte() (byte, error) {
	if d.off >= len(d.b) {
		return 0, errTruncated
	}
	c := d.b[d.off]
	d.off++
	return c, nil
}

func (d *decoder) bool() (bool, error) {
	c, err := d.byte()
	if err != nil {
		return false, err
	}
	switch c {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("invalid bool byte %#x at offset %d", c, d.off-1)
}

func (d *decoder) uvarint() (uint64, error) {
	v, n := binary.Uvarint(d.b[d.off:])
	if n <= 0 {
		return 0, errTruncated
	}
	d.off += n
	return v, nil
}

// count reads a length that must fit in the remaining input, one byte per
// element at minimum.
func (d *decoder) count() (int, error) {
	v, err := d.uvarint()
	if err != nil {
		return 0, err
	}
	if v > uint64(len(d.b)-d.off) {
		return 0, errTruncated
	}
	return int(v), nil
}

// listLen reads a list length written by appendListLen. present is false
// for a nil list.
func (d *decoder) listLen() (n int, present bool, err error) {
	v, err := d.uvarint()
	if err != nil || v == 0 {
		return 0, false, err
	}
	if v-1 > uint64(len(d.b)-d.off) {
		return 0, false, errTruncated
	}
	return int(v - 1), true, nil
}

func (d *decoder) string() (string, error) {
	n, err := d.count()
	if err != nil {
		return "", err
	}
	s := d.b[d.off : d.off+n]
	if !utf8.Valid(s) {
		return "", fmt.Errorf("invalid utf-8 at offset %d", d.off)
	}
	d.off += n
	return string(s), nil
}

func (d *decoder) strings() ([]string, error) {
	n, present, err := d.listLen()
	if err != nil || !present {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		if out[i], err = d.string(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *decoder) term() (model.DictionaryTerm, error) {
	var (
		t   model.DictionaryTerm
		err error
	)
	if t.ID, err = d.string(); err != nil {
		return t, err
	}
	if t.Term, err = d.string(); err != nil {
		return t, err
	}
	if t.Reading, err = d.string(); err != nil {
		return t, err
	}
	ranked, err := d.bool()
	if err != nil {
		return t, err
	}
	if ranked {
		v, err := d.uvarint()
		if err != nil {
			return t, err
		}
		if v > uint64(^uint32(0)) {
			return t, fmt.Errorf("frequency %d overflows uint32", v)
		}
		t.Frequency = model.Rank(uint32(v))
	}
	if t.Common, err = d.bool(); err != nil {
		return t, err
	}
	hasFurigana, err := d.bool()
	if err != nil {
		return t, err
	}
	if hasFurigana {
		n, err := d.count()
		if err != nil {
			return t, err
		}
		t.Furigana = make([]model.Furigana, n)
		for i := range t.Furigana {
			if t.Furigana[i].Ruby, err = d.string(); err != nil {
				return t, err
			}
			if t.Furigana[i].Rt, err = d.string(); err != nil {
				return t, err
			}
		}
	}
	n, present, err := d.listLen()
	if err != nil || !present {
		return t, err
	}
	t.Meanings = make([]model.DictionaryMeaning, n)
	for i := range t.Meanings {
		m := &t.Meanings[i]
		if m.Tags, err = d.strings(); err != nil {
			return t, err
		}
		if m.Info, err = d.strings(); err != nil {
			return t, err
		}
		if m.Gloss, err = d.strings(); err != nil {
			return t, err
		}
	}
	return t, nil
}
