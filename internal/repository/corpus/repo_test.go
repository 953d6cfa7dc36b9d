package corpus

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jdih-search/internal/db"
)

const schema = `
CREATE TABLE categories (id INTEGER PRIMARY KEY, kategori TEXT);
CREATE TABLE subcategories (id INTEGER PRIMARY KEY, category_id INTEGER, subkategori TEXT);
CREATE TABLE keywords (id INTEGER PRIMARY KEY, subcategory_id INTEGER);
CREATE TABLE solutions (
	id INTEGER,
	keyword_id INTEGER,
	judul TEXT,
	deskripsi TEXT,
	deleted_at TIMESTAMP
);
CREATE TABLE api_knowledge_jdih (
	"idData" INTEGER,
	"judul" TEXT,
	"sumber" TEXT,
	"subjek" TEXT,
	"status" TEXT
);

INSERT INTO categories VALUES (1, 'Akun');
INSERT INTO subcategories VALUES (1, 1, 'Kata Sandi');
INSERT INTO keywords VALUES (1, 1);

INSERT INTO solutions VALUES (2, 1, 'Reset Password', 'Langkah reset', NULL);
INSERT INTO solutions VALUES (1, NULL, 'Izin Usaha', NULL, NULL);
INSERT INTO solutions VALUES (3, 1, 'Dihapus', 'x', '2024-01-01 00:00:00');
INSERT INTO solutions VALUES (NULL, 1, 'Tanpa id', 'x', NULL);

INSERT INTO api_knowledge_jdih VALUES (10, 'Perda Pajak', 'Lembaran Daerah', 'Pajak', 'Berlaku');
INSERT INTO api_knowledge_jdih VALUES (11, 'Perda Lama', NULL, NULL, 'Tidak Berlaku');
INSERT INTO api_knowledge_jdih VALUES (12, 'Perbup Retribusi', 'Berita Daerah', NULL, ' tidak berlaku ');
INSERT INTO api_knowledge_jdih VALUES (13, 'Perbup Baru', NULL, 'Retribusi', NULL);
`

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	s, err := db.Open(db.Config{Driver: db.DriverSQLite, DSN: filepath.Join(t.TempDir(), "corpus.db")})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, err = s.DB().ExecContext(context.Background(), schema)
	require.NoError(t, err)
	return s
}

func TestLoad(t *testing.T) {
	s := newTestStore(t)
	repo := New(s.DB(), "", 0, zap.NewNop())

	c, err := repo.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, c.Solutions, 2)
	assert.Equal(t, int64(1), c.Solutions[0].ID)
	assert.Equal(t, "", c.Solutions[0].Category, "unjoined category becomes empty")
	assert.Equal(t, "", c.Solutions[0].Content)
	assert.Equal(t, int64(2), c.Solutions[1].ID)
	assert.Equal(t, "Akun", c.Solutions[1].Category)
	assert.Equal(t, "Kata Sandi", c.Solutions[1].Subcategory)
	assert.Nil(t, c.Solutions[1].DeletedAt)

	ids := make([]int64, 0, len(c.Regulations))
	for _, r := range c.Regulations {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{10, 13}, ids, "inactive regulations excluded case-insensitively")
	assert.Equal(t, "", c.Regulations[1].Source)
	assert.Equal(t, 4, c.Len())
}

func TestLoad_CustomInactiveStatus(t *testing.T) {
	s := newTestStore(t)
	repo := New(s.DB(), "Berlaku", 0, nil)

	c, err := repo.Load(context.Background())
	require.NoError(t, err)

	ids := make([]int64, 0, len(c.Regulations))
	for _, r := range c.Regulations {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{11, 12, 13}, ids)
}

func TestLoad_MissingTable(t *testing.T) {
	s, err := db.Open(db.Config{Driver: db.DriverSQLite, DSN: filepath.Join(t.TempDir(), "empty.db")})
	require.NoError(t, err)
	defer s.Close()

	_, err = New(s.DB(), "", 0, nil).Load(context.Background())
	require.Error(t, err)

	var dbErr *db.Error
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, db.OpQuery, dbErr.Op)
}

type failingStore struct{ err error }

func (f failingStore) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, f.err
}

func TestLoad_QueryError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := New(failingStore{err: boom}, "", 0, nil).Load(context.Background())
	assert.ErrorIs(t, err, boom)
}
