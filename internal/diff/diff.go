// Package diff aligns source text against its transcribed rendering to
// surface likely mispronunciations.
package diff

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"novelcast/internal/models"
)

// DefaultThreshold is the empirical acceptance ratio below which a
// sentence pair is flagged. It is configuration, not a load-bearing
// constant.
const DefaultThreshold = 0.95

// originals shorter than this many runes are too noisy to score
const minSentenceLen = 5

var (
	rubyRe       = regexp.MustCompile(`《[^》]*》`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`[。！？\n]`)
	punctRemover = strings.NewReplacer(
		"、", "", "。", "", "「", "", "」", "",
		"！", "", "？", "", "…", "", "・", "",
		"―", "", "｜", "", "（", "", "）", "",
	)
)

// Compare scores original chunks against candidate (transcribed) chunks
// aligned by index and returns a record for every sentence whose best
// match falls below threshold. A chunk with no transcription contributes
// nothing: skipped, not failed.
func Compare(originals, candidates []string, threshold float64) []models.DifferenceRecord {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	var records []models.DifferenceRecord
	for i, original := range originals {
		candidate := ""
		if i < len(candidates) {
			candidate = candidates[i]
		}
		records = append(records, compareChunk(original, candidate, i, threshold)...)
	}
	return records
}

func compareChunk(original, candidate string, chunkIndex int, threshold float64) []models.DifferenceRecord {
	candSentences := splitUnits(candidate)
	if len(candSentences) == 0 {
		return nil
	}

	candNorm := make([]string, len(candSentences))
	for i, s := range candSentences {
		candNorm[i] = normalizeForScoring(s)
	}

	var records []models.DifferenceRecord
	for _, orig := range splitUnits(original) {
		if utf8.RuneCountInString(orig) < minSentenceLen {
			continue
		}
		origNorm := normalizeForScoring(orig)

		bestRatio := 0.0
		bestMatch := ""
		for i, cn := range candNorm {
			if r := Ratio(origNorm, cn); r > bestRatio {
				bestRatio = r
				bestMatch = candSentences[i]
			}
		}
		if bestRatio < threshold && bestMatch != "" {
			records = append(records, models.DifferenceRecord{
				ChunkIndex:  chunkIndex,
				Original:    orig,
				Transcribed: bestMatch,
				Ratio:       bestRatio,
			})
		}
	}
	return records
}

// splitUnits cuts text into sentence-level units on terminal punctuation
// and line breaks, dropping empties.
func splitUnits(text string) []string {
	var units []string
	for _, u := range sentenceRe.Split(text, -1) {
		u = strings.TrimSpace(u)
		if u != "" {
			units = append(units, u)
		}
	}
	return units
}

// normalizeForScoring strips ruby annotations, whitespace and punctuation.
// The result is used only for scoring, never for output.
func normalizeForScoring(s string) string {
	s = rubyRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, "")
	return punctRemover.Replace(s)
}

// Ratio is a normalized edit-distance similarity in [0,1]; 1.0 means
// identical content.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(editDistance(ra, rb))/float64(longest)
}

// editDistance is a single-row Levenshtein DP over runes.
func editDistance(a, b []rune) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur := make([]int, lb+1)
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			m := prev[j] + 1
			if ins := cur[j-1] + 1; ins < m {
				m = ins
			}
			if sub := prev[j-1] + cost; sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev = cur
	}
	return prev[lb]
}
