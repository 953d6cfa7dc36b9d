package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates queries are served but a dependency is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates no index is published, so queries cannot be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	// Documents and IndexBuiltAt describe the published index, zero when none is.
	Documents    int
	IndexBuiltAt time.Time
}

// Service coordinates health checks.
type Service struct {
	index     IndexReader
	db        DBPinger
	embedding EmbeddingChecker
}

// New creates a Service. db and embedding can be nil.
func New(index IndexReader, db DBPinger, embedding EmbeddingChecker) *Service {
	return &Service{index: index, db: db, embedding: embedding}
}

// Check runs health checks against all components.
// The database is only needed for reloads, so its failure degrades rather than fails.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["index"] = result(nil)
	if !s.index.Ready() {
		checks["index"] = CheckError
	}
	if s.db != nil {
		checks["database"] = result(s.db.Ping(ctx))
	}
	if s.embedding != nil {
		checks["embedding"] = result(s.embedding.HealthCheck(ctx))
	}

	if checks["index"] == CheckError {
		return Report{Status: Unhealthy, Checks: checks}
	}
	docs, builtAt := s.index.IndexInfo()

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	return Report{Status: status, Checks: checks, Documents: docs, IndexBuiltAt: builtAt}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
