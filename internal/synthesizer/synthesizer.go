// Package synthesizer turns raw novel text and detected differences into
// dictionary-entry candidates for the validation gate.
package synthesizer

import (
	"context"
	"strings"

	"novelcast/internal/dictionary"
	"novelcast/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	// sampleSize is the rune window taken from head, middle and tail of
	// the novel on a full-text scan.
	sampleSize = 2000

	// contextMargin is the rune margin added around a flagged sentence.
	contextMargin = 50
)

type Synthesizer struct {
	analyzer Analyzer
}

func New(analyzer Analyzer) *Synthesizer {
	return &Synthesizer{analyzer: analyzer}
}

// Propose collects raw correction proposals. With differences present it
// sends the flagged pairs plus surrounding source context; otherwise it
// samples the full text. Spoken differences reported by the analyzer are
// passed through for the caller to surface. An unavailable or malformed
// analysis degrades to an empty proposal set; the pipeline continues.
func (s *Synthesizer) Propose(ctx context.Context, fullText string, diffs []models.DifferenceRecord, existing dictionary.Dictionary) (map[string]any, []models.SpokenDifference) {
	proposals := map[string]any{}
	var spoken []models.SpokenDifference

	if len(diffs) > 0 {
		var contexts []string
		for _, d := range diffs {
			contexts = append(contexts, ExtractContext(fullText, d.Original, contextMargin))
		}
		res, err := s.analyzer.Analyze(ctx, AnalysisRequest{
			Differences: diffs,
			Context:     strings.Join(contexts, "\n"),
		})
		if err != nil {
			log.Warn().Err(err).Msg("difference analysis failed, continuing without proposals")
		} else {
			mergeProposals(proposals, res.Proposals)
			spoken = append(spoken, res.Differences...)
		}
	} else {
		for i, sample := range textSamples(fullText, sampleSize) {
			res, err := s.analyzer.Analyze(ctx, AnalysisRequest{Text: sample})
			if err != nil {
				log.Warn().Err(err).Int("sample", i+1).Msg("sample analysis failed, skipping")
				continue
			}
			mergeProposals(proposals, res.Proposals)
			spoken = append(spoken, res.Differences...)
		}
	}

	// identical existing entries are a no-op, not an error
	for word, raw := range proposals {
		if reading, ok := raw.(string); ok && existing[word] == reading {
			delete(proposals, word)
		}
	}
	return proposals, spoken
}

func mergeProposals(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}

// textSamples returns head, middle and tail windows of the text, fewer
// when the text is short.
func textSamples(text string, size int) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}
	if n <= size {
		return []string{text}
	}

	samples := []string{string(runes[:size])}
	if n > size*2 {
		mid := n / 2
		end := mid + size
		if end > n {
			end = n
		}
		samples = append(samples, string(runes[mid:end]))
	}
	if n > size*3 {
		samples = append(samples, string(runes[n-size:]))
	}
	return samples
}

// ExtractContext locates sentence inside fullText and widens the window by
// margin runes on each side. When the full sentence is not found a prefix
// of it is tried, 15 runes down to 6; with no match the sentence itself is
// returned.
func ExtractContext(fullText, sentence string, margin int) string {
	full := []rune(fullText)
	target := []rune(sentence)

	pos := runeIndex(full, target)
	if pos < 0 {
		for length := 15; length >= 6; length-- {
			if length > len(target) {
				continue
			}
			if pos = runeIndex(full, target[:length]); pos >= 0 {
				break
			}
		}
	}
	if pos < 0 {
		return sentence
	}

	start := pos - margin
	if start < 0 {
		start = 0
	}
	end := pos + len(target) + margin
	if end > len(full) {
		end = len(full)
	}
	return string(full[start:end])
}

func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	idx := strings.Index(string(haystack), string(needle))
	if idx < 0 {
		return -1
	}
	return len([]rune(string(haystack)[:idx]))
}
