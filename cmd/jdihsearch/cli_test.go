package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jdih-search/internal/config"
	"github.com/kailas-cloud/jdih-search/internal/domain"
	"github.com/kailas-cloud/jdih-search/internal/domain/corpus"
	"github.com/kailas-cloud/jdih-search/internal/usecase/index"
	searchuc "github.com/kailas-cloud/jdih-search/internal/usecase/search"
)

type fixedEmbedder struct {
	vec []float32
	err error
}

func (f fixedEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: f.vec}, nil
}

type noCorrection struct{}

func (noCorrection) Correct(q string) (string, string) { return q, q }

func testService(t *testing.T, emb searchuc.Embedder) *searchuc.Service {
	t.Helper()
	logger = zap.NewNop()

	c := corpus.Corpus{
		Solutions: []corpus.Solution{
			{ID: 1, Category: "Akun", Title: "Reset Password", Content: "Langkah mengganti kata sandi"},
			{ID: 2, Category: "Perizinan", Title: "Izin Usaha", Content: "Pengajuan izin usaha daring"},
		},
		Regulations: []corpus.Regulation{
			{ID: 20, Title: "Peraturan Daerah tentang Pajak", Source: "Lembaran Daerah", Subject: "Pajak"},
		},
	}
	ix, err := index.New(c, [][]float32{{1, 0}, {0.9, 0.1}}, [][]float32{{0, 1}})
	require.NoError(t, err)

	svc := searchuc.New(noCorrection{}, emb, searchuc.Options{}, zap.NewNop())
	svc.Swap(ix)
	return svc
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"config wrapper", configError(errors.New("bad yaml")), ExitConfigError},
		{"configuration sentinel", fmt.Errorf("build: %w", domain.ErrConfiguration), ExitConfigError},
		{"runtime", errors.New("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRunQuery_JSON(t *testing.T) {
	svc := testService(t, fixedEmbedder{vec: []float32{1, 0}})

	var out bytes.Buffer
	require.NoError(t, runQuery(context.Background(), svc, "izin usaha", &out, false))
	assert.JSONEq(t, `{"results":[2,1]}`, out.String())
}

func TestRunQuery_HumanDegraded(t *testing.T) {
	svc := testService(t, fixedEmbedder{err: domain.ErrEmbeddingProviderError})

	var out bytes.Buffer
	require.NoError(t, runQuery(context.Background(), svc, "izin", &out, true))
	assert.Contains(t, out.String(), "2\n")
	assert.Contains(t, out.String(), "keyword matches only")
}

func TestREPL_StopsOnExit(t *testing.T) {
	svc := testService(t, fixedEmbedder{vec: []float32{0, 1}})
	in := strings.NewReader("pajak\n\nexit\nizin\n")
	var out bytes.Buffer
	require.NoError(t, repl(context.Background(), svc, in, &out))

	got := out.String()
	assert.Contains(t, got, "20")
	assert.Equal(t, 1, strings.Count(got, "20"))
	// "izin" comes after exit and is never answered.
	assert.NotContains(t, got, "2, 1")
}

func TestREPL_ReportsErrorsAndContinues(t *testing.T) {
	svc := testService(t, fixedEmbedder{err: domain.ErrEncoderTimeout})
	in := strings.NewReader("tidak ada\nizin\n")
	var out bytes.Buffer
	require.NoError(t, repl(context.Background(), svc, in, &out))

	got := out.String()
	assert.Contains(t, got, "error: ")
	assert.Contains(t, got, "2\n")
}

func TestREPL_NoResults(t *testing.T) {
	svc := testService(t, fixedEmbedder{vec: []float32{1, 0}})

	idx, err := index.New(corpus.Corpus{}, nil, nil)
	require.NoError(t, err)
	svc.Swap(idx)

	var out bytes.Buffer
	require.NoError(t, repl(context.Background(), svc, strings.NewReader("apa saja\nquit\n"), &out))
	assert.Contains(t, out.String(), "no results")
}

type probedEmbedder struct {
	fixedEmbedder
	healthErr error
	checked   bool
}

func (p *probedEmbedder) HealthCheck(context.Context) error {
	p.checked = true
	return p.healthErr
}

func TestCheckEncoder(t *testing.T) {
	cfg := config.EmbeddingConfig{Provider: config.ProviderOpenAI, Model: "m", TimeoutMs: 1000}

	t.Run("unavailable provider is a config error", func(t *testing.T) {
		provider := &probedEmbedder{healthErr: domain.ErrEmbeddingProviderError}
		a := &app{queryEmbedder: decorate(provider, cfg, "query: ", zap.NewNop())}

		err := a.checkEncoder(context.Background(), time.Second)
		require.Error(t, err)
		assert.True(t, provider.checked, "health check reaches the provider through the decorators")
		assert.ErrorIs(t, err, domain.ErrEmbeddingProviderError)
		assert.Equal(t, ExitConfigError, exitCode(err))
	})

	t.Run("healthy provider", func(t *testing.T) {
		provider := &probedEmbedder{}
		a := &app{queryEmbedder: decorate(provider, cfg, "", zap.NewNop())}

		require.NoError(t, a.checkEncoder(context.Background(), 0))
		assert.True(t, provider.checked)
	})

	t.Run("embedder without health check", func(t *testing.T) {
		a := &app{queryEmbedder: fixedEmbedder{}}
		assert.NoError(t, a.checkEncoder(context.Background(), time.Second))
	})
}
