package result

import "github.com/kailas-cloud/jdih-search/internal/domain/corpus"

// Result is a single semantic search hit.
type Result struct {
	id    int64
	score float64
	kind  corpus.Kind
}

// New creates a search result.
func New(id int64, score float64, kind corpus.Kind) Result {
	return Result{id: id, score: score, kind: kind}
}

// ID returns the document identifier.
func (r *Result) ID() int64 { return r.id }

// Score returns the cosine similarity score.
func (r *Result) Score() float64 { return r.score }

// Kind returns the sub-corpus the document belongs to.
func (r *Result) Kind() corpus.Kind { return r.kind }

// IDs extracts document ids in result order.
func IDs(results []Result) []int64 {
	ids := make([]int64, len(results))
	for i := range results {
		ids[i] = results[i].id
	}
	return ids
}
