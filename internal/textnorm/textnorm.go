package textnorm

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ErrEncodingNotDetected is returned when no candidate encoding decodes the file.
var ErrEncodingNotDetected = errors.New("could not detect file encoding")

// Candidate encodings in preference order. Novel sources are usually UTF-8,
// older archives come as Shift_JIS or EUC-JP.
var candidates = []struct {
	name string
	enc  encoding.Encoding
}{
	{"utf-8", nil},
	{"shift_jis", japanese.ShiftJIS},
	{"euc-jp", japanese.EUCJP},
	{"iso-2022-jp", japanese.ISO2022JP},
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// DecodeFile reads path and decodes it with the first candidate encoding
// that produces valid text.
func DecodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Decode(data)
}

// Decode decodes raw bytes with the first candidate encoding that succeeds.
func Decode(data []byte) (string, error) {
	fallback := ""
	haveFallback := false

	for _, c := range candidates {
		if c.enc == nil {
			if utf8.Valid(data) {
				return string(data), nil
			}
			continue
		}
		decoded, _, err := transform.Bytes(c.enc.NewDecoder(), data)
		if err != nil {
			continue
		}
		text := string(decoded)
		// transform can succeed while emitting replacement runes; treat
		// those as a failed decode so the next candidate gets a try
		if strings.ContainsRune(text, utf8.RuneError) {
			continue
		}
		// a wrong legacy encoding tends to decode into halfwidth
		// katakana mojibake rather than fail outright
		if looksLikeMojibake(text) {
			if !haveFallback {
				fallback, haveFallback = text, true
			}
			continue
		}
		return text, nil
	}
	if haveFallback {
		return fallback, nil
	}
	return "", fmt.Errorf("%w (tried utf-8, shift_jis, euc-jp, iso-2022-jp)", ErrEncodingNotDetected)
}

// looksLikeMojibake flags text dominated by halfwidth katakana, the usual
// result of decoding EUC-JP bytes as Shift_JIS (and vice versa).
func looksLikeMojibake(text string) bool {
	total, halfwidth := 0, 0
	for _, r := range text {
		total++
		if r >= 0xFF61 && r <= 0xFF9F {
			halfwidth++
		}
	}
	return total > 0 && float64(halfwidth)/float64(total) > 0.5
}

// Normalize canonicalizes raw novel text: one line-terminator form,
// runs of blank lines collapsed to a single blank line, edges trimmed.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
