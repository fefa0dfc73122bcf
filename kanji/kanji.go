// Package kanji classifies Japanese script.
package kanji

import "unicode"

// IsKanji reports whether r is a CJK ideograph or the iteration mark 々.
func IsKanji(r rune) bool {
	return r == '々' || r == '〆' || unicode.Is(unicode.Han, r)
}

// IsKana returns true if rune is Hiragana or Katakana, including the
// prolonged sound mark and halfwidth katakana.
func IsKana(r rune) bool {
	switch {
	case r >= 0x3041 && r <= 0x309F: // hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // katakana
		return true
	case r >= 0x31F0 && r <= 0x31FF: // katakana phonetic extensions
		return true
	case r >= 0xFF66 && r <= 0xFF9F: // halfwidth katakana
		return true
	}
	return false
}

// ContainsJapanese reports whether s has at least one kana or kanji.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if IsKana(r) || IsKanji(r) {
			return true
		}
	}
	return false
}

// HasKanji reports whether s has at least one kanji.
func HasKanji(s string) bool {
	for _, r := range s {
		if IsKanji(r) {
			return true
		}
	}
	return false
}

// KatakanaToHiragana converts katakana to hiragana. Other runes, including
// ヷ-ヺ which have no hiragana counterpart, are unchanged.
func KatakanaToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
