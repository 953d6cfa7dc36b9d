// Package corpus loads solutions and JDIH regulations from the service desk database.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jdih-search/internal/db"
	domcorpus "github.com/kailas-cloud/jdih-search/internal/domain/corpus"
)

const solutionsQuery = `
SELECT
	s.id,
	c.kategori,
	sub.subkategori,
	s.judul,
	s.deskripsi,
	s.deleted_at
FROM solutions s
LEFT JOIN keywords k ON s.keyword_id = k.id
LEFT JOIN subcategories sub ON k.subcategory_id = sub.id
LEFT JOIN categories c ON sub.category_id = c.id
WHERE s.deleted_at IS NULL
ORDER BY s.id`

const regulationsQuery = `
SELECT
	"idData",
	"judul",
	"sumber",
	"subjek",
	"status"
FROM api_knowledge_jdih
ORDER BY "idData"`

// store is the consumer interface for corpus queries (*sql.DB satisfies it).
type store interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repo implements index.Loader.
type Repo struct {
	store          store
	inactiveStatus string
	queryTimeout   time.Duration
	logger         *zap.Logger
}

// New creates a corpus repository. Regulations whose status equals
// inactiveStatus are left out.
func New(s store, inactiveStatus string, queryTimeout time.Duration, logger *zap.Logger) *Repo {
	if inactiveStatus == "" {
		inactiveStatus = domcorpus.DefaultInactiveStatus
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, inactiveStatus: inactiveStatus, queryTimeout: queryTimeout, logger: logger}
}

// Load reads both sub-corpora in id order.
func (r *Repo) Load(ctx context.Context) (domcorpus.Corpus, error) {
	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	solutions, err := r.loadSolutions(ctx)
	if err != nil {
		return domcorpus.Corpus{}, err
	}
	regulations, err := r.loadRegulations(ctx)
	if err != nil {
		return domcorpus.Corpus{}, err
	}

	r.logger.Info("Corpus loaded",
		zap.Int("solutions", len(solutions)),
		zap.Int("regulations", len(regulations)),
	)
	return domcorpus.Corpus{Solutions: solutions, Regulations: regulations}, nil
}

func (r *Repo) loadSolutions(ctx context.Context) ([]domcorpus.Solution, error) {
	rows, err := r.store.QueryContext(ctx, solutionsQuery)
	if err != nil {
		return nil, fmt.Errorf("load solutions: %w", &db.Error{Op: db.OpQuery, Err: err})
	}
	defer rows.Close()

	var out []domcorpus.Solution
	skipped := 0
	for rows.Next() {
		var row solutionRow
		if err := rows.Scan(&row.ID, &row.Category, &row.Subcategory, &row.Title, &row.Content, &row.DeletedAt); err != nil {
			return nil, fmt.Errorf("load solutions: %w", &db.Error{Op: db.OpScan, Err: err})
		}
		if !row.ID.Valid {
			skipped++
			continue
		}
		s := row.toDomain()
		if !s.Retained() {
			continue
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load solutions: %w", &db.Error{Op: db.OpQuery, Err: err})
	}
	if skipped > 0 {
		r.logger.Warn("Solutions without id skipped", zap.Int("count", skipped))
	}
	return out, nil
}

func (r *Repo) loadRegulations(ctx context.Context) ([]domcorpus.Regulation, error) {
	rows, err := r.store.QueryContext(ctx, regulationsQuery)
	if err != nil {
		return nil, fmt.Errorf("load regulations: %w", &db.Error{Op: db.OpQuery, Err: err})
	}
	defer rows.Close()

	var out []domcorpus.Regulation
	skipped, inactive := 0, 0
	for rows.Next() {
		var row regulationRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Source, &row.Subject, &row.Status); err != nil {
			return nil, fmt.Errorf("load regulations: %w", &db.Error{Op: db.OpScan, Err: err})
		}
		if !row.ID.Valid {
			skipped++
			continue
		}
		reg := row.toDomain()
		if !reg.Retained(r.inactiveStatus) {
			inactive++
			continue
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load regulations: %w", &db.Error{Op: db.OpQuery, Err: err})
	}
	if skipped > 0 {
		r.logger.Warn("Regulations without id skipped", zap.Int("count", skipped))
	}
	r.logger.Debug("Inactive regulations excluded", zap.Int("count", inactive))
	return out, nil
}
