package dictionary

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Replacer substitutes dictionary readings into text. The default is
// literal substring substitution; it deliberately ignores word boundaries,
// so a stricter matcher can be swapped in here without touching callers.
type Replacer interface {
	Replace(text string, dict Dictionary) string
}

// LongestMatch replaces every occurrence of each surface form with its
// reading, longest surface form first, so a longer more specific key is
// never pre-empted by one of its substrings.
type LongestMatch struct{}

func (LongestMatch) Replace(text string, dict Dictionary) string {
	for _, key := range sortedKeys(dict) {
		text = strings.ReplaceAll(text, key, dict[key])
	}
	return text
}

// Apply runs the default longest-match replacement.
func Apply(text string, dict Dictionary) string {
	return LongestMatch{}.Replace(text, dict)
}

// sortedKeys orders surface forms by rune length descending, ties broken
// lexicographically so replacement is deterministic.
func sortedKeys(dict Dictionary) []string {
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(keys[i]), utf8.RuneCountInString(keys[j])
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})
	return keys
}
