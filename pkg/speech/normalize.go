// Package speech turns raw speech-to-text transcripts and keypad input into
// normalized text and clean digit strings.
package speech

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTranscript lowercases text, drops Latin accent marks, replaces
// sentence punctuation with spaces and collapses whitespace. Hyphens, slashes
// and colons between digits survive so tokenizers and time parsing can use them.
func NormalizeTranscript(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = stripLatinDiacritics(text)
	text = strings.ToLower(text)

	src := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i, r := range src {
		switch {
		case r == '\'' || r == '’' || r == '`':
			// don't -> dont
		case r == '-' || r == '/':
			b.WriteRune(r)
		case r == ':' || r == '.':
			if i > 0 && i+1 < len(src) && isASCIIDigit(src[i-1]) && isASCIIDigit(src[i+1]) {
				b.WriteRune(':')
			} else {
				b.WriteRune(' ')
			}
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsControl(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Normalized is a convenience for callers holding an optional transcript.
func Normalized(text *string) string {
	if text == nil {
		return ""
	}
	return NormalizeTranscript(*text)
}

// Combining marks in U+0300..U+036F decorate Latin letters. Devanagari vowel
// signs live in their own block and must be kept.
func isLatinCombining(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}

func stripLatinDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isLatinCombining)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }
