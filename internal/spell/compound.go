package spell

import (
	"math"
	"regexp"
	"strings"
)

// corpusWordCount is the word count of the corpus the reference frequency
// dictionaries are derived from; it scales naive Bayes split estimates.
const corpusWordCount = 1024908267229

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}\p{M}]+['’]*[\p{L}\p{N}\p{M}]*`)

// parseWords lowercases text and extracts its word tokens.
func parseWords(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// LookupCompound corrects a multi-word phrase. Each token is corrected on its
// own, merged with its predecessor when the merged form is a closer match, or
// split in two when a split explains it better. Unknown tokens are kept.
// The returned suggestion joins the corrected parts with single spaces.
func (d *Dictionary) LookupCompound(phrase string, maxEditDistance int) Suggestion {
	if maxEditDistance > d.opts.MaxEditDistance {
		maxEditDistance = d.opts.MaxEditDistance
	}
	terms := parseWords(phrase)
	parts := make([]Suggestion, 0, len(terms))
	lastCombined := false

	for i, term := range terms {
		suggestion, ok := d.Lookup(term, maxEditDistance)

		if i > 0 && !lastCombined {
			if combined, cok := d.Lookup(terms[i-1]+term, maxEditDistance); cok {
				best1 := parts[len(parts)-1]
				best2 := suggestion
				if !ok {
					best2 = unknownSuggestion(term, maxEditDistance)
				}
				distance := best1.Distance + best2.Distance
				if combined.Distance+1 < distance ||
					(combined.Distance+1 == distance &&
						float64(combined.Count) > float64(best1.Count)/corpusWordCount*float64(best2.Count)) {
					combined.Distance++
					parts[len(parts)-1] = combined
					lastCombined = true
					continue
				}
			}
		}
		lastCombined = false

		termRunes := []rune(term)
		if ok && (suggestion.Distance == 0 || len(termRunes) == 1) {
			parts = append(parts, suggestion)
			continue
		}

		if split, sok := d.bestSplit(termRunes, suggestion, ok, maxEditDistance); sok {
			parts = append(parts, split)
			continue
		}
		parts = append(parts, unknownSuggestion(term, maxEditDistance))
	}

	words := make([]string, len(parts))
	count := float64(corpusWordCount)
	for i, p := range parts {
		words[i] = p.Term
		count *= float64(p.Count) / corpusWordCount
	}
	joined := strings.Join(words, " ")

	return Suggestion{
		Term:     joined,
		Distance: osaDistance([]rune(strings.ToLower(phrase)), []rune(joined), math.MaxInt32),
		Count:    int64(count),
	}
}

// bestSplit tries every two-way split of term and returns the best one that is
// at least as close as the direct suggestion (when there is one).
func (d *Dictionary) bestSplit(term []rune, direct Suggestion, hasDirect bool, maxEditDistance int) (Suggestion, bool) {
	var best Suggestion
	found := hasDirect
	if hasDirect {
		best = direct
	}
	if len(term) < 2 {
		return best, found
	}

	for j := 1; j < len(term); j++ {
		s1, ok := d.Lookup(string(term[:j]), maxEditDistance)
		if !ok {
			continue
		}
		s2, ok := d.Lookup(string(term[j:]), maxEditDistance)
		if !ok {
			continue
		}

		candidate := s1.Term + " " + s2.Term
		distance := osaDistance(term, []rune(candidate), maxEditDistance)
		if distance < 0 {
			distance = maxEditDistance + 1
		}
		if found {
			if distance > best.Distance {
				continue
			}
			if distance < best.Distance {
				found = false
			}
		}

		count := int64(float64(s1.Count) / corpusWordCount * float64(s2.Count))
		if !found || count > best.Count {
			best = Suggestion{Term: candidate, Distance: distance, Count: count}
			found = true
		}
	}
	return best, found
}

// unknownSuggestion keeps term verbatim with a distance beyond any real match.
func unknownSuggestion(term string, maxEditDistance int) Suggestion {
	var count int64
	if len([]rune(term)) == 1 {
		count = 1
	}
	return Suggestion{Term: term, Distance: maxEditDistance + 1, Count: count}
}
