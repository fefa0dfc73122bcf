package dictionary

import "github.com/rcrowley/go-metrics"

var (
	InsertTimer = metrics.NewRegisteredTimer("lexicon.insert", nil)
	LookupTimer = metrics.NewRegisteredTimer("lexicon.lookup", nil)
	LookupHits  = metrics.NewRegisteredMeter("lexicon.lookup.hit", nil)
	LookupMiss  = metrics.NewRegisteredMeter("lexicon.lookup.miss", nil)
	TermsStored = metrics.NewRegisteredCounter("lexicon.terms", nil)
)
