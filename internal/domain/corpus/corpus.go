// Package corpus holds the searchable document types of both sub-corpora.
package corpus

import (
	"strings"
	"time"
)

// Kind identifies a sub-corpus.
type Kind string

// Sub-corpus constants.
const (
	// Solutions are support-desk solution articles.
	Solutions Kind = "solutions"
	// Regulations are JDIH legal and regulatory records.
	Regulations Kind = "regulations"
)

// IsValid checks if the kind is one of the known sub-corpora.
func (k Kind) IsValid() bool {
	return k == Solutions || k == Regulations
}

// DefaultInactiveStatus is the regulation status that keeps a record out of the corpus.
const DefaultInactiveStatus = "Tidak Berlaku"

// Solution is a support solution article.
type Solution struct {
	ID          int64
	Category    string
	Subcategory string
	Title       string
	Content     string
	DeletedAt   *time.Time
}

// Retained reports whether the solution belongs in the corpus.
func (s *Solution) Retained() bool { return s.DeletedAt == nil }

// EmbeddingText returns the raw text the solution embedding is computed from.
func (s *Solution) EmbeddingText() string {
	return s.Title + " " + s.Content
}

// LexicalFields returns the fields searched by the lexical matcher, in priority order.
func (s *Solution) LexicalFields() []string {
	return []string{s.Category, s.Subcategory, s.Title, s.Content}
}

// Regulation is a JDIH legal record.
type Regulation struct {
	ID      int64
	Title   string
	Source  string
	Subject string
	Status  string
}

// Retained reports whether the regulation is in force, i.e. its status differs
// from inactiveStatus (case-insensitive, surrounding whitespace ignored).
func (r *Regulation) Retained(inactiveStatus string) bool {
	if inactiveStatus == "" {
		inactiveStatus = DefaultInactiveStatus
	}
	return !strings.EqualFold(strings.TrimSpace(r.Status), strings.TrimSpace(inactiveStatus))
}

// EmbeddingText returns the raw text the regulation embedding is computed from.
func (r *Regulation) EmbeddingText() string {
	return r.Title + " " + r.Source + " " + r.Subject
}

// LexicalFields returns the fields searched by the lexical matcher, in priority order.
func (r *Regulation) LexicalFields() []string {
	return []string{r.Title, r.Source, r.Subject}
}

// Corpus is the loaded, filtered document set in corpus order.
type Corpus struct {
	Solutions   []Solution
	Regulations []Regulation
}

// Len returns the total number of documents.
func (c *Corpus) Len() int {
	return len(c.Solutions) + len(c.Regulations)
}
