package search

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/jdih-search/internal/domain"
	"github.com/kailas-cloud/jdih-search/internal/domain/corpus"
	"github.com/kailas-cloud/jdih-search/internal/domain/search/result"
	"github.com/kailas-cloud/jdih-search/internal/usecase/index"
)

// DefaultTopN is the number of semantic results returned from the winning sub-corpus.
const DefaultTopN = 10

// Scored is a cosine score for the document at position Pos of a vector list.
type Scored struct {
	Pos   int
	Score float64
}

// Rank scores every vector against query and sorts by descending similarity.
// Equal scores keep their original order.
func Rank(query []float32, vectors [][]float32) []Scored {
	scored := make([]Scored, len(vectors))
	for i, v := range vectors {
		scored[i] = Scored{Pos: i, Score: Cosine(query, v)}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	return scored
}

// Cosine returns the cosine similarity of a and b. A zero vector scores 0.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// SelectCorpus implements winner-take-all between the two ranked sub-corpora:
// the one holding the single best score wins and only its top-N are returned.
// Ties favor solutions; an empty list never wins.
func SelectCorpus(solutions, regulations []result.Result, topN int) (corpus.Kind, []result.Result) {
	if len(solutions) == 0 && len(regulations) == 0 {
		return "", []result.Result{}
	}
	if topScore(solutions) >= topScore(regulations) {
		return corpus.Solutions, head(solutions, topN)
	}
	return corpus.Regulations, head(regulations, topN)
}

// RankSemantic ranks both sub-corpora of ix against query and applies SelectCorpus.
func RankSemantic(ix *index.Index, query []float32, topN int) (corpus.Kind, []result.Result, error) {
	if ix == nil || ix.Len() == 0 {
		return "", []result.Result{}, nil
	}
	if len(query) != ix.Dim() {
		return "", nil, fmt.Errorf("query has %d dimensions, index has %d: %w",
			len(query), ix.Dim(), domain.ErrVectorDimMismatch)
	}

	solutions := toResults(Rank(query, ix.SolutionVectors()), corpus.Solutions, func(pos int) int64 {
		return ix.Solutions()[pos].ID
	})
	regulations := toResults(Rank(query, ix.RegulationVectors()), corpus.Regulations, func(pos int) int64 {
		return ix.Regulations()[pos].ID
	})

	kind, top := SelectCorpus(solutions, regulations, topN)
	return kind, top, nil
}

func toResults(scored []Scored, kind corpus.Kind, idAt func(int) int64) []result.Result {
	out := make([]result.Result, len(scored))
	for i, s := range scored {
		out[i] = result.New(idAt(s.Pos), s.Score, kind)
	}
	return out
}

func topScore(rs []result.Result) float64 {
	if len(rs) == 0 {
		return math.Inf(-1)
	}
	return rs[0].Score()
}

func head(rs []result.Result, n int) []result.Result {
	if n <= 0 {
		return rs[:0]
	}
	if n < len(rs) {
		return rs[:n]
	}
	return rs
}
