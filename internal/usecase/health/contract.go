package health

import (
	"context"
	"time"
)

// IndexReader reports whether a search index is published.
type IndexReader interface {
	Ready() bool
	// IndexInfo returns the published document count and build time.
	IndexInfo() (documents int, builtAt time.Time)
}

// DBPinger checks corpus database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
