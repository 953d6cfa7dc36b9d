// Package index builds the immutable search context: the filtered corpus plus
// one embedding per document.
package index

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/jdih-search/internal/domain"
	"github.com/kailas-cloud/jdih-search/internal/domain/corpus"
)

// Index is a built search context. It is never mutated after Build returns,
// so it may be shared by any number of concurrent queries.
type Index struct {
	solutions         []corpus.Solution
	regulations       []corpus.Regulation
	solutionVectors   [][]float32
	regulationVectors [][]float32
	dim               int
	builtAt           time.Time
}

// New assembles an index from a corpus and vectors aligned with its documents.
// Ids must be unique across both sub-corpora and all vectors must share one size.
func New(c corpus.Corpus, solutionVectors, regulationVectors [][]float32) (*Index, error) {
	if len(solutionVectors) != len(c.Solutions) || len(regulationVectors) != len(c.Regulations) {
		return nil, fmt.Errorf("got %d+%d vectors for %d+%d documents: %w",
			len(solutionVectors), len(regulationVectors), len(c.Solutions), len(c.Regulations),
			domain.ErrVectorDimMismatch)
	}
	if err := checkUniqueIDs(c); err != nil {
		return nil, err
	}
	dim, err := commonDim(append(append([][]float32{}, solutionVectors...), regulationVectors...))
	if err != nil {
		return nil, err
	}
	return &Index{
		solutions:         c.Solutions,
		regulations:       c.Regulations,
		solutionVectors:   solutionVectors,
		regulationVectors: regulationVectors,
		dim:               dim,
		builtAt:           time.Now(),
	}, nil
}

// Solutions returns the solution documents in corpus order.
func (ix *Index) Solutions() []corpus.Solution { return ix.solutions }

// Regulations returns the regulation documents in corpus order.
func (ix *Index) Regulations() []corpus.Regulation { return ix.regulations }

// SolutionVectors returns embeddings aligned with Solutions.
func (ix *Index) SolutionVectors() [][]float32 { return ix.solutionVectors }

// RegulationVectors returns embeddings aligned with Regulations.
func (ix *Index) RegulationVectors() [][]float32 { return ix.regulationVectors }

// Dim returns the shared embedding dimensionality, 0 for an empty index.
func (ix *Index) Dim() int { return ix.dim }

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.solutions) + len(ix.regulations) }

// BuiltAt returns the time the index was published.
func (ix *Index) BuiltAt() time.Time { return ix.builtAt }
