package spell

import (
	"regexp"
	"strings"
)

var numericToken = regexp.MustCompile(`^\p{Nd}+$`)

// Corrector fixes typos in user queries token by token.
type Corrector struct {
	dict            *Dictionary
	maxEditDistance int
}

// NewCorrector creates a corrector over dict. A nil dict yields an identity corrector.
func NewCorrector(dict *Dictionary, maxEditDistance int) *Corrector {
	return &Corrector{dict: dict, maxEditDistance: maxEditDistance}
}

// Enabled reports whether a dictionary backs the corrector.
func (c *Corrector) Enabled() bool { return c != nil && c.dict != nil }

// Correct returns the corrected query together with the original.
// Pure digit tokens, such as regulation numbers, are never changed.
func (c *Corrector) Correct(query string) (corrected, original string) {
	if !c.Enabled() {
		return query, query
	}

	tokens := strings.Fields(query)
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		if numericToken.MatchString(tok) {
			out[i] = tok
			continue
		}
		if s := c.dict.LookupCompound(tok, c.maxEditDistance); s.Term != "" {
			out[i] = s.Term
		} else {
			out[i] = tok
		}
	}
	return strings.Join(out, " "), query
}
