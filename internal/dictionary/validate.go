package dictionary

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"novelcast/internal/jptext"
	"novelcast/internal/models"
)

// Rejection reasons, kept as the audit wording of the correction reports.
const (
	ReasonNotString     = "型が不正"
	ReasonEmpty         = "空文字"
	ReasonNotInSource   = "原文に存在しない"
	ReasonSingleChar    = "1文字は部分一致リスク"
	ReasonKanaOnly      = "かな文字のみ（TTS読める）"
	ReasonKanjiReading  = "読みに漢字が含まれる"
	ReasonNoKanji       = "キーに漢字なし"
	ReasonWholeSentence = "文まるごとひらがな化は禁止"
)

// Validate gates raw correction proposals before they may be merged.
// Accepted proposals pass every rule; each rejection carries its reason.
// A proposal identical to an existing entry is a silent no-op: neither
// accepted nor rejected.
func Validate(proposals map[string]any, sourceText string, existing Dictionary) (Dictionary, []models.Rejection) {
	accepted := Dictionary{}
	var rejected []models.Rejection

	reject := func(word, reading, reason string) {
		rejected = append(rejected, models.Rejection{Surface: word, Reading: reading, Reason: reason})
	}

	for _, word := range sortedProposalKeys(proposals) {
		raw := proposals[word]
		reading, ok := raw.(string)
		if !ok {
			reject(word, fmt.Sprintf("%v", raw), ReasonNotString)
			continue
		}
		if strings.TrimSpace(word) == "" || strings.TrimSpace(reading) == "" {
			reject(word, reading, ReasonEmpty)
			continue
		}
		if !strings.Contains(sourceText, word) {
			reject(word, reading, ReasonNotInSource)
			continue
		}
		wordLen := utf8.RuneCountInString(word)
		if wordLen == 1 {
			reject(word, reading, ReasonSingleChar)
			continue
		}
		if existing[word] == reading {
			continue
		}
		if jptext.IsKanaOnly(word) {
			reject(word, reading, ReasonKanaOnly)
			continue
		}
		if jptext.ContainsKanji(reading) {
			reject(word, reading, ReasonKanjiReading)
			continue
		}
		if !jptext.ContainsKanji(word) {
			reject(word, reading, ReasonNoKanji)
			continue
		}
		// guard against a whole clause captured as a "word"
		kanjiCount := jptext.KanjiCount(word)
		if wordLen > 8 && float64(kanjiCount)/float64(wordLen) < 0.2 {
			reject(word, reading, fmt.Sprintf("漢字率が低い(%d/%d) → 不要な長文", kanjiCount, wordLen))
			continue
		}
		if wordLen > 15 && jptext.IsHiraganaSentence(reading) {
			reject(word, reading, ReasonWholeSentence)
			continue
		}
		accepted[word] = reading
	}

	return accepted, rejected
}

func sortedProposalKeys(proposals map[string]any) []string {
	keys := make([]string, 0, len(proposals))
	for k := range proposals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
