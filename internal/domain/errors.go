package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals a startup dependency (corpus, dictionary, encoder) that is unusable.
	ErrConfiguration = errors.New("configuration error")
	// ErrIndexNotReady signals a query arriving before a search index was published.
	ErrIndexNotReady = errors.New("search index not ready")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrDuplicateDocumentID signals two corpus documents sharing one id.
	ErrDuplicateDocumentID = errors.New("duplicate document id")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEncoderTimeout signals an embedding call that exceeded its deadline.
	ErrEncoderTimeout = errors.New("embedding encoder timeout")
	// ErrDictionaryUnavailable signals a spelling dictionary that could not be loaded.
	ErrDictionaryUnavailable = errors.New("dictionary unavailable")
)

// DuplicateIDError wraps ErrDuplicateDocumentID with the offending id.
type DuplicateIDError struct {
	ID int64
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s: %d", ErrDuplicateDocumentID.Error(), e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateDocumentID }

// NewDuplicateID creates a duplicate document id error.
func NewDuplicateID(id int64) error {
	return &DuplicateIDError{ID: id}
}

// IsRetryable reports whether a per-query failure may succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrEncoderTimeout) ||
		errors.Is(err, ErrEmbeddingProviderError) ||
		errors.Is(err, ErrIndexNotReady)
}
