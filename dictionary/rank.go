package dictionary

import "popupdict/model"

// bucket returns the sort bucket of a term:
// 0 common ranked, 1 common unranked, 2 uncommon ranked, 3 uncommon unranked.
func bucket(t *model.DictionaryTerm) int {
	b := 0
	if !t.Common {
		b = 2
	}
	if !t.Ranked() {
		b++
	}
	return b
}

// sortsAfter reports whether existing must come after t.
// Equal keys never sort after, so insertion order is kept among ties.
func sortsAfter(existing, t *model.DictionaryTerm) bool {
	be, bt := bucket(existing), bucket(t)
	if be != bt {
		return be > bt
	}
	if !existing.Ranked() || !t.Ranked() {
		return false
	}
	return *existing.Frequency > *t.Frequency
}

// InsertRanked inserts t in front of the first term that sorts after it, or
// appends it. terms must already satisfy the bucket order.
func InsertRanked(terms []model.DictionaryTerm, t model.DictionaryTerm) []model.DictionaryTerm {
	for i := range terms {
		if sortsAfter(&terms[i], &t) {
			terms = append(terms, model.DictionaryTerm{})
			copy(terms[i+1:], terms[i:])
			terms[i] = t
			return terms
		}
	}
	return append(terms, t)
}

// Ordered reports whether terms satisfy the bucket order with ascending
// frequency inside ranked buckets.
func Ordered(terms []model.DictionaryTerm) bool {
	for i := 1; i < len(terms); i++ {
		if sortsAfter(&terms[i-1], &terms[i]) {
			return false
		}
	}
	return true
}
