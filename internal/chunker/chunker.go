// Package chunker splits normalized novel text into speech-API-sized
// segments without breaking sentences.
package chunker

import (
	"strings"
	"unicode/utf8"

	"novelcast/internal/models"
)

// Split cuts text into chunks of at most maxSize runes, keeping paragraph
// and sentence boundaries intact. A single sentence longer than maxSize is
// emitted whole rather than truncated. Chunk order follows document order;
// the index is later used to re-align transcribed audio to source text.
func Split(text string, maxSize int) []models.Chunk {
	var contents []string
	current := ""

	for _, paragraph := range strings.Split(text, models.ParagraphSeparator) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if utf8.RuneCountInString(paragraph) > maxSize {
			// oversized paragraph: flush and re-split at sentence boundaries
			if current != "" {
				contents = append(contents, current)
				current = ""
			}
			temp := ""
			for _, sentence := range SplitSentences(paragraph) {
				if utf8.RuneCountInString(temp)+utf8.RuneCountInString(sentence) <= maxSize {
					temp += sentence
					continue
				}
				if temp != "" {
					contents = append(contents, strings.TrimSpace(temp))
				}
				temp = sentence
			}
			current = strings.TrimSpace(temp)
			continue
		}

		test := paragraph
		if current != "" {
			test = current + models.ParagraphSeparator + paragraph
		}
		if utf8.RuneCountInString(test) <= maxSize {
			current = test
			continue
		}
		if current != "" {
			contents = append(contents, current)
		}
		current = paragraph
	}

	if current != "" {
		contents = append(contents, current)
	}

	chunks := make([]models.Chunk, 0, len(contents))
	for i, c := range contents {
		chunks = append(chunks, models.Chunk{Content: c, Index: i})
	}
	return chunks
}

// SplitSentences cuts a paragraph at terminal punctuation. Each sentence
// keeps its terminators; a run of terminators (！？) stays on one sentence.
func SplitSentences(paragraph string) []string {
	var sentences []string
	var b strings.Builder
	inTerminator := false

	for _, r := range paragraph {
		terminal := strings.ContainsRune(models.SentenceTerminators, r)
		if inTerminator && !terminal {
			sentences = append(sentences, b.String())
			b.Reset()
		}
		b.WriteRune(r)
		inTerminator = terminal
	}
	if b.Len() > 0 {
		sentences = append(sentences, b.String())
	}
	return sentences
}
