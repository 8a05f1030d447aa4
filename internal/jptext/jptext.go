// Package jptext holds the rune classification helpers shared by the
// dictionary validation gate, the difference detector and the reading check.
package jptext

import "strings"

// IsKanji reports whether r is a CJK ideograph (the 一-龥 range the
// correction rules are written against).
func IsKanji(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FA5
}

// IsHiragana reports whether r is hiragana (ぁ-ん) or the prolonged sound mark.
func IsHiragana(r rune) bool {
	return (r >= 0x3041 && r <= 0x3093) || r == 'ー'
}

// IsKatakana reports whether r is katakana (ァ-ヶ) or the prolonged sound mark.
func IsKatakana(r rune) bool {
	return (r >= 0x30A1 && r <= 0x30F6) || r == 'ー'
}

// IsKana reports whether r is hiragana or katakana.
func IsKana(r rune) bool {
	return IsHiragana(r) || IsKatakana(r)
}

// ContainsKanji reports whether s holds at least one ideograph.
func ContainsKanji(s string) bool {
	for _, r := range s {
		if IsKanji(r) {
			return true
		}
	}
	return false
}

// KanjiCount returns the number of ideographs in s.
func KanjiCount(s string) int {
	n := 0
	for _, r := range s {
		if IsKanji(r) {
			n++
		}
	}
	return n
}

// IsKanaOnly reports whether s consists entirely of kana.
func IsKanaOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsKana(r) {
			return false
		}
	}
	return true
}

// IsHiraganaSentence reports whether s is hiragana plus sentence punctuation
// and whitespace only. Used to refuse whole-sentence hiragana readings.
func IsHiraganaSentence(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if IsHiragana(r) {
			continue
		}
		if strings.ContainsRune("、。！？", r) || r == ' ' || r == '　' || r == '\n' || r == '\t' {
			continue
		}
		return false
	}
	return true
}

// KatakanaToHiragana folds katakana runes into hiragana for comparison.
func KatakanaToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
