package spell

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Options configures a Dictionary.
type Options struct {
	// MaxEditDistance bounds the edit distance of any lookup.
	MaxEditDistance int
	// PrefixLength is the word prefix length the delete index is built from.
	PrefixLength int
	// CountThreshold is the minimum cumulative count for a term to be suggested.
	CountThreshold int64
}

// DefaultOptions returns max edit distance 3, prefix length 7, count threshold 1.
func DefaultOptions() Options {
	return Options{MaxEditDistance: 3, PrefixLength: 7, CountThreshold: 1}
}

// Validate checks option consistency.
func (o Options) Validate() error {
	if o.MaxEditDistance < 0 {
		return errors.New("max edit distance must not be negative")
	}
	if o.PrefixLength < 1 {
		return errors.New("prefix length must be at least 1")
	}
	if o.PrefixLength <= o.MaxEditDistance {
		return fmt.Errorf("prefix length %d must exceed max edit distance %d", o.PrefixLength, o.MaxEditDistance)
	}
	if o.CountThreshold < 0 {
		return errors.New("count threshold must not be negative")
	}
	return nil
}

// Suggestion is a candidate correction.
type Suggestion struct {
	Term     string
	Distance int
	Count    int64
}

// Dictionary is a term frequency table with a symmetric delete index.
type Dictionary struct {
	opts           Options
	words          map[string]int64
	belowThreshold map[string]int64
	deletes        map[string][]string
	maxLength      int
}

// NewDictionary creates an empty dictionary.
func NewDictionary(opts Options) (*Dictionary, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dictionary options: %w", err)
	}
	return &Dictionary{
		opts:           opts,
		words:          make(map[string]int64),
		belowThreshold: make(map[string]int64),
		deletes:        make(map[string][]string),
	}, nil
}

// Add records count occurrences of term. Counts of repeated terms accumulate.
// Returns true when term became a new suggestable word.
func (d *Dictionary) Add(term string, count int64) bool {
	if count <= 0 {
		if d.opts.CountThreshold > 0 {
			return false
		}
		count = 0
	}

	if d.opts.CountThreshold > 1 {
		if prev, ok := d.belowThreshold[term]; ok {
			count = saturatingAdd(prev, count)
			if count < d.opts.CountThreshold {
				d.belowThreshold[term] = count
				return false
			}
			delete(d.belowThreshold, term)
		}
	}

	if prev, ok := d.words[term]; ok {
		d.words[term] = saturatingAdd(prev, count)
		return false
	}
	if count < d.opts.CountThreshold {
		d.belowThreshold[term] = count
		return false
	}

	d.words[term] = count
	runes := []rune(term)
	if len(runes) > d.maxLength {
		d.maxLength = len(runes)
	}
	for del := range d.prefixDeletes(runes) {
		d.deletes[del] = append(d.deletes[del], term)
	}
	return true
}

// Len returns the number of suggestable words.
func (d *Dictionary) Len() int { return len(d.words) }

// Count returns the frequency of term, or 0 when unknown.
func (d *Dictionary) Count(term string) int64 { return d.words[term] }

// MaxEditDistance returns the configured maximum edit distance.
func (d *Dictionary) MaxEditDistance() int { return d.opts.MaxEditDistance }

// prefixDeletes returns every string obtainable from the word prefix by
// deleting up to MaxEditDistance runes, the prefix itself included.
func (d *Dictionary) prefixDeletes(word []rune) map[string]struct{} {
	set := make(map[string]struct{})
	if len(word) <= d.opts.MaxEditDistance {
		set[""] = struct{}{}
	}
	if len(word) > d.opts.PrefixLength {
		word = word[:d.opts.PrefixLength]
	}
	set[string(word)] = struct{}{}
	d.collectDeletes(word, 0, 0, set)
	return set
}

func (d *Dictionary) collectDeletes(word []rune, distance, from int, set map[string]struct{}) {
	distance++
	if len(word) == 0 {
		return
	}
	for i := from; i < len(word); i++ {
		del := deleteAt(word, i)
		key := string(del)
		if _, seen := set[key]; seen {
			continue
		}
		set[key] = struct{}{}
		if distance < d.opts.MaxEditDistance {
			d.collectDeletes(del, distance, i, set)
		}
	}
}

// Lookup returns the closest known term to phrase within maxEditDistance,
// preferring smaller distance and then higher count. An exact hit has distance 0.
func (d *Dictionary) Lookup(phrase string, maxEditDistance int) (Suggestion, bool) {
	if maxEditDistance > d.opts.MaxEditDistance {
		maxEditDistance = d.opts.MaxEditDistance
	}
	phraseRunes := []rune(phrase)
	phraseLen := len(phraseRunes)

	if phraseLen-maxEditDistance > d.maxLength {
		return Suggestion{}, false
	}
	if count, ok := d.words[phrase]; ok {
		return Suggestion{Term: phrase, Distance: 0, Count: count}, true
	}
	if maxEditDistance == 0 {
		return Suggestion{}, false
	}

	var best Suggestion
	found := false
	maxDist2 := maxEditDistance

	consideredDeletes := make(map[string]struct{})
	consideredSuggestions := map[string]struct{}{phrase: {}}

	phrasePrefixLen := min(phraseLen, d.opts.PrefixLength)
	candidates := [][]rune{phraseRunes[:phrasePrefixLen]}

	for ptr := 0; ptr < len(candidates); ptr++ {
		candidate := candidates[ptr]
		candidateLen := len(candidate)
		lenDiff := phrasePrefixLen - candidateLen
		if lenDiff > maxDist2 {
			break
		}

		for _, suggestion := range d.deletes[string(candidate)] {
			if suggestion == phrase {
				continue
			}
			suggestionRunes := []rune(suggestion)
			suggestionLen := len(suggestionRunes)
			if abs(suggestionLen-phraseLen) > maxDist2 ||
				suggestionLen < candidateLen ||
				(suggestionLen == candidateLen && suggestion != string(candidate)) {
				continue
			}
			suggestionPrefixLen := min(suggestionLen, d.opts.PrefixLength)
			if suggestionPrefixLen > phrasePrefixLen && suggestionPrefixLen-candidateLen > maxDist2 {
				continue
			}

			var distance int
			switch {
			case candidateLen == 0:
				// every character of both words was deleted
				distance = max(phraseLen, suggestionLen)
				if _, seen := consideredSuggestions[suggestion]; seen || distance > maxDist2 {
					continue
				}
			case suggestionLen == 1:
				distance = phraseLen
				if slices.Contains(phraseRunes, suggestionRunes[0]) {
					distance = phraseLen - 1
				}
				if _, seen := consideredSuggestions[suggestion]; seen || distance > maxDist2 {
					continue
				}
			case d.prefixExhausted(candidateLen, maxEditDistance) &&
				suffixesDiffer(phraseRunes, suggestionRunes, d.opts.PrefixLength):
				continue
			default:
				if _, seen := consideredSuggestions[suggestion]; seen {
					continue
				}
				consideredSuggestions[suggestion] = struct{}{}
				distance = osaDistance(phraseRunes, suggestionRunes, maxDist2)
				if distance < 0 {
					continue
				}
			}
			if distance > maxDist2 {
				continue
			}
			count := d.words[suggestion]
			if !found || distance < best.Distance || (distance == best.Distance && count > best.Count) {
				best = Suggestion{Term: suggestion, Distance: distance, Count: count}
				found = true
				maxDist2 = distance
			}
		}

		if lenDiff < maxEditDistance && candidateLen <= d.opts.PrefixLength {
			if lenDiff >= maxDist2 {
				continue
			}
			for i := range candidateLen {
				del := deleteAt(candidate, i)
				key := string(del)
				if _, seen := consideredDeletes[key]; seen {
					continue
				}
				consideredDeletes[key] = struct{}{}
				candidates = append(candidates, del)
			}
		}
	}

	return best, found
}

// prefixExhausted reports whether the candidate used every edit allowed inside the prefix.
func (d *Dictionary) prefixExhausted(candidateLen, maxEditDistance int) bool {
	return d.opts.PrefixLength-maxEditDistance == candidateLen
}

// suffixesDiffer reports whether the parts of phrase and suggestion beyond the
// prefix cannot be reconciled without another edit.
func suffixesDiffer(phrase, suggestion []rune, prefixLength int) bool {
	pl, sl := len(phrase), len(suggestion)
	minLen := min(pl, sl) - prefixLength
	if minLen > 1 && string(phrase[pl+1-minLen:]) != string(suggestion[sl+1-minLen:]) {
		return true
	}
	return minLen > 0 &&
		phrase[pl-minLen] != suggestion[sl-minLen] &&
		(phrase[pl-minLen-1] != suggestion[sl-minLen] || phrase[pl-minLen] != suggestion[sl-minLen-1])
}

func deleteAt(word []rune, i int) []rune {
	out := make([]rune, 0, len(word)-1)
	out = append(out, word[:i]...)
	return append(out, word[i+1:]...)
}

func saturatingAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
