package dictionary

// genericTags folds JMdict part-of-speech codes into a smaller label set.
var genericTags = map[string]string{
	"unc":       "?",
	"n":         "noun",
	"exp":       "expression",
	"adj-na":    "na-adj",
	"adj-no":    "no-adj",
	"adj-i":     "i-adj",
	"v5u":       "godan",
	"vt":        "transitive",
	"pn":        "pronoun",
	"adv":       "adverb",
	"adv-to":    "to-adverb",
	"vs":        "suru",
	"adj-pn":    "pre-noun",
	"int":       "interjection",
	"v1":        "ichidan",
	"vi":        "intransitive",
	"v5s":       "godan",
	"v5k":       "godan",
	"v5r":       "godan",
	"v5aru":     "godan",
	"aux-v":     "aux-verb",
	"adj-f":     "pre-adj",
	"conj":      "conjunction",
	"prt":       "particle",
	"v5m":       "godan",
	"n-suf":     "suffix",
	"v5g":       "godan",
	"v5r-i":     "godan",
	"suf":       "suffix",
	"vs-i":      "suru",
	"adj-t":     "taru-adj",
	"adj-ix":    "i-adj",
	"aux":       "auxiliary",
	"cop":       "copula",
	"pref":      "prefix",
	"vk":        "kuru-verb",
	"aux-adj":   "aux-adj",
	"n-pref":    "prefix",
	"ctr":       "counter",
	"num":       "numeric",
	"vs-s":      "suru",
	"adj-shiku": "shiku-adj",
	"v5t":       "godan",
	"v5b":       "godan",
	"v5k-s":     "godan",
	"vz":        "ichidan",
	"v2m-s":     "nidan-l",
	"vs-c":      "su-verb",
	"v1-s":      "ichidan",
	"v5n":       "godan",
	"vn":        "irregular",
	"adj-ku":    "ku-adj",
	"v2h-k":     "nidan-u",
	"v2a-s":     "nidan",
	"v4m":       "yodan",
	"v2r-k":     "nidan-u",
	"v4r":       "yodan",
	"v2r-s":     "nidan-l",
	"v5u-s":     "godan",
	"vr":        "irregular",
	"v4s":       "yodan",
	"adj-nari":  "nari-adj",
	"v4k":       "yodan",
	"v2k-s":     "nidan-l",
	"v2t-k":     "nidan-u",
	"v4h":       "yodan",
	"v4t":       "yodan",
	"v4g":       "yodan",
	"v2h-s":     "nidan-l",
	"v2g-s":     "nidan-l",
	"v4b":       "yodan",
	"v2y-s":     "nidan-l",
	"v2d-s":     "nidan-l",
	"v2y-k":     "nidan-u",
	"v2k-k":     "nidan-u",
	"v2g-k":     "nidan-u",
	"v2b-k":     "nidan-u",
	"v2s-s":     "nidan-l",
	"v2z-s":     "nidan-l",
	"v2t-s":     "nidan-l",
	"v2n-s":     "nidan-l",
	"v2w-s":     "nidan-l",
}

var tagDescriptions = map[string]string{
	"?":            "unclassified",
	"noun":         "noun (common) (futsuumeishi)",
	"expression":   "expression (phrases, clauses, etc.)",
	"na-adj":       "adjectival noun or quasi-adjective (keiyodoshi)",
	"no-adj":       "noun which may take the genitive case particle 'no'",
	"i-adj":        "adjective (keiyoushi)",
	"godan":        "godan verb",
	"transitive":   "transitive verb",
	"pronoun":      "pronoun",
	"adverb":       "adverb (fukushi)",
	"to-adverb":    "adverb taking the 'to' particle",
	"suru":         "noun or participle which takes the aux. verb suru",
	"pre-noun":     "pre-noun adjectival (rentaishi)",
	"interjection": "interjection (kandoushi)",
	"ichidan":      "ichidan verb",
	"intransitive": "intransitive verb",
	"aux-verb":     "auxiliary verb",
	"pre-adj":      "noun or verb acting prenominally",
	"conjunction":  "conjunction",
	"particle":     "particle",
	"suffix":       "suffix",
	"taru-adj":     "'taru' adjective",
	"auxiliary":    "auxiliary",
	"copula":       "copula",
	"prefix":       "prefix",
	"kuru-verb":    "kuru verb - special class",
	"aux-adj":      "auxiliary adjective",
	"counter":      "counter",
	"numeric":      "numeric",
	"shiku-adj":    "'shiku' adjective (archaic)",
	"nidan-l":      "nidan verb (lower class) (archaic)",
	"su-verb":      "su verb - precursor to modern suru",
	"irregular":    "irregular verb",
	"ku-adj":       "'ku' adjective (archaic)",
	"nidan-u":      "nidan verb (upper class) (archaic)",
	"nidan":        "nidan verb (archaic)",
	"yodan":        "yodan verb (archaic)",
	"nari-adj":     "archaic/formal form of na-adjective",
}

// GenericTag maps a JMdict part-of-speech code to its generic label.
func GenericTag(code string) (string, bool) {
	tag, ok := genericTags[code]
	return tag, ok
}

// TagDescription returns the human-readable description of a generic label.
func TagDescription(tag string) string {
	if d, ok := tagDescriptions[tag]; ok {
		return d
	}
	return "unknown"
}
