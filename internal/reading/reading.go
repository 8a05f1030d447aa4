// Package reading estimates how the synthesizer will read a novel without
// calling any API, using morphological analysis to list words worth a
// dictionary entry.
package reading

import (
	"sort"

	"novelcast/internal/jptext"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Word is a noun surface with the reading the tokenizer predicts for it.
// Reading is folded to hiragana, the script dictionary entries use.
type Word struct {
	Surface string
	Reading string
	Proper  bool
	Count   int
}

// Result lists reading-check candidates, proper nouns first, then by
// frequency. Unknown holds surfaces the dictionary could not read at all.
type Result struct {
	Words   []Word
	Unknown []string
}

// common nouns that are never worth a correction entry
var ignoreWords = map[string]struct{}{
	"こと": {}, "もの": {}, "よう": {}, "ため": {},
	"やつ": {}, "これ": {}, "それ": {}, "あれ": {},
}

// Check tokenizes text and collects nouns likely to be misread.
func Check(text string) (*Result, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}

	type key struct {
		surface, reading string
		proper           bool
	}
	counts := map[key]int{}
	unknownSeen := map[string]struct{}{}
	var unknown []string

	for _, token := range t.Tokenize(text) {
		features := token.Features()
		if len(features) < 2 || features[0] != "名詞" {
			continue
		}
		surface := token.Surface
		if isEasyToRead(surface) {
			continue
		}
		if _, ok := ignoreWords[surface]; ok {
			continue
		}

		reading, ok := token.Reading()
		if !ok || reading == "*" {
			if _, seen := unknownSeen[surface]; !seen {
				unknownSeen[surface] = struct{}{}
				unknown = append(unknown, surface)
			}
			continue
		}
		// the tokenizer reports readings in katakana
		counts[key{surface, jptext.KatakanaToHiragana(reading), features[1] == "固有名詞"}]++
	}

	words := make([]Word, 0, len(counts))
	for k, n := range counts {
		words = append(words, Word{Surface: k.surface, Reading: k.reading, Proper: k.proper, Count: n})
	}
	// proper nouns first, then frequency, then stable surface order
	sort.Slice(words, func(i, j int) bool {
		if words[i].Proper != words[j].Proper {
			return words[i].Proper
		}
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Surface < words[j].Surface
	})

	return &Result{Words: words, Unknown: unknown}, nil
}

// isEasyToRead reports surfaces made only of kana, ASCII letters and
// digits; the synthesizer handles those without help.
func isEasyToRead(surface string) bool {
	for _, r := range surface {
		if jptext.IsKana(r) {
			continue
		}
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			continue
		}
		return false
	}
	return true
}
