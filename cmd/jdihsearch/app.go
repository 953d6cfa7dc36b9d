package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jdih-search/internal/config"
	"github.com/kailas-cloud/jdih-search/internal/db"
	"github.com/kailas-cloud/jdih-search/internal/domain"
	"github.com/kailas-cloud/jdih-search/internal/metrics"
	corpusrepo "github.com/kailas-cloud/jdih-search/internal/repository/corpus"
	"github.com/kailas-cloud/jdih-search/internal/repository/embcache"
	"github.com/kailas-cloud/jdih-search/internal/spell"
	langchainEnc "github.com/kailas-cloud/jdih-search/internal/transport/langchain"
	openaiEnc "github.com/kailas-cloud/jdih-search/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/jdih-search/internal/usecase/embedding"
	"github.com/kailas-cloud/jdih-search/internal/usecase/index"
	searchuc "github.com/kailas-cloud/jdih-search/internal/usecase/search"
)

// app is the composition root shared by serve and search.
type app struct {
	store         *db.Store
	builder       *index.Builder
	search        *searchuc.Service
	queryEmbedder domain.Embedder
	cache         *embcache.MemoryStore
}

// newApp wires every dependency. The index is not built yet.
func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	metrics.Register()

	store, err := db.Open(db.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.ConnString()})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	corrector, err := newCorrector(cfg.Dictionary, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	base, err := newProvider(cfg.Embedding, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	a := &app{store: store}

	// Documents are encoded once per build, so only queries go through the cache.
	queryBase := base
	if cfg.Embedding.CacheSize > 0 {
		a.cache, err = embcache.NewMemoryStore(cfg.Embedding.CacheSize)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		}
		queryBase = embcache.New(base, a.cache, metrics.EmbeddingCacheTotal, logger)
	}

	docEmbedder := decorate(base, cfg.Embedding, cfg.Embedding.DocumentInstruction, logger)
	a.queryEmbedder = decorate(queryBase, cfg.Embedding, cfg.Embedding.QueryInstruction, logger)

	loader := corpusrepo.New(store.DB(), cfg.Database.InactiveStatus,
		time.Duration(cfg.Database.QueryTimeoutSec)*time.Second, logger)
	a.builder = index.NewBuilder(loader, docEmbedder, cfg.Embedding.LoadConcurrency, logger)
	a.search = searchuc.New(corrector, a.queryEmbedder, searchuc.Options{
		TopN:       cfg.Search.TopN,
		MaxResults: cfg.Search.MaxResults,
	}, logger)

	logger.Info("Dependencies wired",
		zap.String("db_driver", store.Driver()),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Bool("typo_correction", corrector.Enabled()),
	)
	return a, nil
}

// buildAndPublish builds a fresh index and swaps it in.
func (a *app) buildAndPublish(ctx context.Context, logger *zap.Logger) error {
	start := time.Now()
	ix, err := a.builder.Build(ctx)
	if err != nil {
		return err
	}
	a.search.Swap(ix)
	logger.Info("Search index published",
		zap.Int("documents", ix.Len()),
		zap.Time("built_at", ix.BuiltAt()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// checkEncoder fails startup when the embedding provider does not answer.
// An empty corpus never reaches the encoder during the build, so this is the only probe.
func (a *app) checkEncoder(ctx context.Context, timeout time.Duration) error {
	hc, ok := a.queryEmbedder.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return configError(fmt.Errorf("embedding provider unavailable: %w", err))
	}
	return nil
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
	a.store.Close()
}

func newCorrector(cfg config.DictionaryConfig, logger *zap.Logger) (*spell.Corrector, error) {
	if cfg.Path == "" {
		logger.Warn("No dictionary configured, typo correction disabled")
		return spell.NewCorrector(nil, cfg.MaxEditDistance), nil
	}
	dict, err := spell.LoadDictionaryFile(cfg.Path, spell.Options{
		MaxEditDistance: cfg.MaxEditDistance,
		PrefixLength:    cfg.PrefixLength,
		CountThreshold:  cfg.CountThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	logger.Info("Dictionary loaded", zap.String("path", cfg.Path), zap.Int("terms", dict.Len()))
	return spell.NewCorrector(dict, cfg.MaxEditDistance), nil
}

func newProvider(cfg config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderLangchain:
		return langchainEnc.NewEncoder(&langchainEnc.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Logger:  logger,
		})
	default:
		return openaiEnc.NewEncoder(&openaiEnc.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Logger:     logger,
		}), nil
	}
}

// decorate assembles provider -> (cache) -> instrumented -> instruction.
func decorate(inner domain.Embedder, cfg config.EmbeddingConfig, instruction string, logger *zap.Logger) domain.Embedder {
	var embedder domain.Embedder = embeddinguc.NewInstrumentedEmbedder(
		inner, cfg.Provider, cfg.Model, time.Duration(cfg.TimeoutMs)*time.Millisecond, logger,
	)
	// Instruction prefix is outermost so the cache key includes it.
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}
