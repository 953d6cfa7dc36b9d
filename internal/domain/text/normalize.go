// Package text canonicalizes free text before embedding and comparison.
package text

import (
	"strings"
	"unicode"
)

// asciiPunctuation mirrors the classic ASCII punctuation set.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Normalize lowercases s, drops punctuation, collapses whitespace runs into a
// single space and trims the ends. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	stripped := strings.Map(func(r rune) rune {
		if isPunct(r) {
			return -1
		}
		return r
	}, strings.ToLower(s))
	return strings.Join(strings.Fields(stripped), " ")
}

func isPunct(r rune) bool {
	if r < unicode.MaxASCII {
		return strings.ContainsRune(asciiPunctuation, r)
	}
	return unicode.IsPunct(r)
}
