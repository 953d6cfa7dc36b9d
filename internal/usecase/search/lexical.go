package search

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/jdih-search/internal/usecase/index"
)

// DefaultMaxResults caps lexical matches per query.
const DefaultMaxResults = 30

const (
	wordBoundaryBefore = `(?:^|[^\p{L}\p{N}_])`
	wordBoundaryAfter  = `(?:$|[^\p{L}\p{N}_])`
	wordChar           = `[\p{L}\p{N}_]`
)

// MatchKeyword returns ids of documents containing keyword as a whole word,
// solutions first and then regulations, each in corpus order, at most maxResults.
// The keyword is taken literally and matched case-insensitively.
func MatchKeyword(keyword string, ix *index.Index, maxResults int) []int64 {
	ids := make([]int64, 0)
	if ix == nil || maxResults <= 0 {
		return ids
	}
	re := keywordPattern(keyword)
	if re == nil {
		return ids
	}

	for i := range ix.Solutions() {
		doc := &ix.Solutions()[i]
		if anyMatch(re, doc.LexicalFields()) {
			ids = append(ids, doc.ID)
			if len(ids) == maxResults {
				return ids
			}
		}
	}
	for i := range ix.Regulations() {
		doc := &ix.Regulations()[i]
		if anyMatch(re, doc.LexicalFields()) {
			ids = append(ids, doc.ID)
			if len(ids) == maxResults {
				return ids
			}
		}
	}
	return ids
}

// keywordPattern compiles a whole-word pattern for keyword, nil for a blank keyword
// or one that does not compile. Invalid UTF-8 is replaced with U+FFFD first.
// A boundary is required only next to word characters, so keywords that begin
// or end with punctuation need a word character on that side instead.
func keywordPattern(keyword string) *regexp.Regexp {
	keyword = strings.ToValidUTF8(keyword, "\uFFFD")
	if strings.TrimSpace(keyword) == "" {
		return nil
	}
	first, _ := utf8.DecodeRuneInString(keyword)
	last, _ := utf8.DecodeLastRuneInString(keyword)

	before, after := wordChar, wordChar
	if isWordRune(first) {
		before = wordBoundaryBefore
	}
	if isWordRune(last) {
		after = wordBoundaryAfter
	}
	re, err := regexp.Compile(`(?i)` + before + regexp.QuoteMeta(keyword) + after)
	if err != nil {
		return nil
	}
	return re
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func anyMatch(re *regexp.Regexp, fields []string) bool {
	for _, f := range fields {
		if f != "" && re.MatchString(f) {
			return true
		}
	}
	return false
}
