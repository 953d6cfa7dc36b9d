package search

import (
	"context"

	"github.com/kailas-cloud/jdih-search/internal/domain"
)

// Embedder vectorizes the corrected query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Corrector rewrites misspelled query terms.
type Corrector interface {
	Correct(query string) (corrected, original string)
}
