package embcache

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// MemoryStore is a bounded ristretto cache holding up to maxEntries vectors.
type MemoryStore struct {
	cache *ristretto.Cache[string, []float32]
}

// NewMemoryStore creates the cache. Every entry costs 1.
func NewMemoryStore(maxEntries int64) (*MemoryStore, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("embedding cache size must be positive, got %d", maxEntries)
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

// Get returns the cached vector.
func (s *MemoryStore) Get(key string) ([]float32, bool) {
	return s.cache.Get(key)
}

// Set stores the vector. Admission is asynchronous and may be refused under pressure.
func (s *MemoryStore) Set(key string, vec []float32) {
	s.cache.Set(key, vec, 1)
}

// Wait blocks until pending writes are applied.
func (s *MemoryStore) Wait() {
	s.cache.Wait()
}

// Close stops the cache's background goroutines.
func (s *MemoryStore) Close() {
	s.cache.Close()
}
