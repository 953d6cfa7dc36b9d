// Package langchain encodes text through langchaingo's embeddings abstraction,
// pointed at a self-hosted OpenAI-compatible server.
package langchain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jdih-search/internal/domain"
	"github.com/kailas-cloud/jdih-search/internal/metrics"
)

const providerName = "langchain"

// Config holds the endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string // local servers usually accept any token
	Model   string
	Logger  *zap.Logger
}

// Encoder implements domain.Embedder on top of embeddings.Embedder.
type Encoder struct {
	embedder embeddings.Embedder
	model    string
	logger   *zap.Logger
}

// NewEncoder builds the langchaingo client and wraps it.
func NewEncoder(cfg *Config) (*Encoder, error) {
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("langchain client: %w", err)
	}

	emb, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("langchain embedder: %w", err)
	}

	return newEncoder(emb, cfg.Model, cfg.Logger), nil
}

func newEncoder(emb embeddings.Embedder, model string, log *zap.Logger) *Encoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Encoder{
		embedder: emb,
		model:    model,
		logger:   log.With(zap.String("provider", providerName), zap.String("model", model)),
	}
}

// Embed implements domain.Embedder. Token usage is not reported by langchaingo.
func (e *Encoder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	e.logger.Debug("generating embedding", zap.Int("length", len(text)))

	start := time.Now()
	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "api_error").Inc()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return domain.EmbeddingResult{}, fmt.Errorf("embedding request: %w: %w", err, domain.ErrEmbeddingProviderError)
		}
		return domain.EmbeddingResult{}, fmt.Errorf("embedding request: %s: %w", err.Error(), domain.ErrEmbeddingProviderError)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(time.Since(start).Seconds())

	return domain.EmbeddingResult{Embedding: vectors[0]}, nil
}
