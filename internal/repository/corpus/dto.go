package corpus

import (
	"database/sql"

	domcorpus "github.com/kailas-cloud/jdih-search/internal/domain/corpus"
)

// solutionRow is one row of solutionsQuery. Joined columns are nullable.
type solutionRow struct {
	ID          sql.NullInt64
	Category    sql.NullString
	Subcategory sql.NullString
	Title       sql.NullString
	Content     sql.NullString
	DeletedAt   sql.NullTime
}

func (r *solutionRow) toDomain() domcorpus.Solution {
	s := domcorpus.Solution{
		ID:          r.ID.Int64,
		Category:    r.Category.String,
		Subcategory: r.Subcategory.String,
		Title:       r.Title.String,
		Content:     r.Content.String,
	}
	if r.DeletedAt.Valid {
		t := r.DeletedAt.Time
		s.DeletedAt = &t
	}
	return s
}

// regulationRow is one row of regulationsQuery.
type regulationRow struct {
	ID      sql.NullInt64
	Title   sql.NullString
	Source  sql.NullString
	Subject sql.NullString
	Status  sql.NullString
}

func (r *regulationRow) toDomain() domcorpus.Regulation {
	return domcorpus.Regulation{
		ID:      r.ID.Int64,
		Title:   r.Title.String,
		Source:  r.Source.String,
		Subject: r.Subject.String,
		Status:  r.Status.String,
	}
}
