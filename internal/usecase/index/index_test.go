package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/jdih-search/internal/domain"
	"github.com/kailas-cloud/jdih-search/internal/domain/corpus"
)

func TestNew(t *testing.T) {
	c := sampleCorpus()
	ix, err := New(c, [][]float32{{1, 0}, {0, 1}}, [][]float32{{1, 1}})
	require.NoError(t, err)

	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, 2, ix.Dim())
	assert.Equal(t, int64(10), ix.Regulations()[0].ID)
	assert.Equal(t, []float32{1, 1}, ix.RegulationVectors()[0])
}

func TestNew_Empty(t *testing.T) {
	ix, err := New(corpus.Corpus{}, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, ix.Len())
	assert.Zero(t, ix.Dim())
}

func TestNew_Misaligned(t *testing.T) {
	_, err := New(sampleCorpus(), [][]float32{{1, 0}}, [][]float32{{1, 1}})
	assert.ErrorIs(t, err, domain.ErrVectorDimMismatch)
}

func TestNew_MixedDimensions(t *testing.T) {
	_, err := New(sampleCorpus(), [][]float32{{1, 0}, {0, 1, 0}}, [][]float32{{1, 1}})
	assert.ErrorIs(t, err, domain.ErrVectorDimMismatch)
}

func TestNew_DuplicateID(t *testing.T) {
	c := corpus.Corpus{
		Solutions:   []corpus.Solution{{ID: 4}},
		Regulations: []corpus.Regulation{{ID: 4}},
	}
	_, err := New(c, [][]float32{{1}}, [][]float32{{1}})
	assert.ErrorIs(t, err, domain.ErrDuplicateDocumentID)
}
