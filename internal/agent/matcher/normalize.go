package matcher

import (
	"strings"
	"unicode"
)

// Normalize lowercases text, drops punctuation and symbols, and trims the
// result. Letters, digits, underscores and whitespace are kept, so
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
