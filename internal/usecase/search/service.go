// Package search answers free-text queries by combining exact keyword matches
// with winner-take-all semantic ranking over the published index.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/jdih-search/internal/domain"
	"github.com/kailas-cloud/jdih-search/internal/domain/corpus"
	"github.com/kailas-cloud/jdih-search/internal/domain/search/result"
	"github.com/kailas-cloud/jdih-search/internal/domain/text"
	"github.com/kailas-cloud/jdih-search/internal/logger"
	"github.com/kailas-cloud/jdih-search/internal/metrics"
	"github.com/kailas-cloud/jdih-search/internal/usecase/index"
)

// Options bounds the result lists.
type Options struct {
	TopN       int // semantic results from the winning sub-corpus
	MaxResults int // lexical matches
}

// Response is the outcome of one query.
type Response struct {
	IDs       []int64
	Corrected string
	Original  string
	Corpus    corpus.Kind // winning semantic sub-corpus, empty when nothing ranked
	Degraded  bool        // semantic half unavailable, IDs are lexical only
}

// Service runs queries against the currently published index.
type Service struct {
	index     atomic.Pointer[index.Index]
	corrector Corrector
	embed     Embedder
	opts      Options
	logger    *zap.Logger
}

// New creates a search service. Queries fail with domain.ErrIndexNotReady until Swap is called.
func New(corrector Corrector, embed Embedder, opts Options, logger *zap.Logger) *Service {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{corrector: corrector, embed: embed, opts: opts, logger: logger}
}

// Swap publishes ix and returns the index it replaced.
func (s *Service) Swap(ix *index.Index) *index.Index {
	return s.index.Swap(ix)
}

// Index returns the published index, nil before the first Swap.
func (s *Service) Index() *index.Index {
	return s.index.Load()
}

// IndexInfo returns the published index size and build time, zero values before the first Swap.
func (s *Service) IndexInfo() (documents int, builtAt time.Time) {
	ix := s.index.Load()
	if ix == nil {
		return 0, time.Time{}
	}
	return ix.Len(), ix.BuiltAt()
}

// Ready reports whether an index has been published.
func (s *Service) Ready() bool {
	return s.index.Load() != nil
}

// GetCombinedIDs returns lexical ids followed by unseen semantic ids.
// The slice is never nil, including on error.
func (s *Service) GetCombinedIDs(ctx context.Context, query string) ([]int64, error) {
	resp, err := s.Search(ctx, query)
	return resp.IDs, err
}

// Search runs the lexical scan on the raw query and the semantic ranking on the
// corrected, normalized query concurrently, then combines them.
// When the encoder fails the lexical ids are returned with Degraded set;
// the encoder error is returned only if there are no lexical ids either.
func (s *Service) Search(ctx context.Context, query string) (Response, error) {
	start := time.Now()
	resp, err := s.search(ctx, query)
	metrics.SearchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
	case resp.Degraded:
		metrics.SearchRequestsTotal.WithLabelValues("degraded").Inc()
	case len(resp.IDs) == 0:
		metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
	default:
		metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	}
	return resp, err
}

func (s *Service) search(ctx context.Context, query string) (Response, error) {
	resp := Response{IDs: []int64{}, Original: query, Corrected: query}

	ix := s.index.Load()
	if ix == nil {
		return resp, domain.ErrIndexNotReady
	}
	log := logger.FromContextOr(ctx, s.logger)

	var (
		lexical  []int64
		semantic []result.Result
		semErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexical = MatchKeyword(query, ix, s.opts.MaxResults)
		return nil
	})
	g.Go(func() error {
		corrected, original := s.corrector.Correct(query)
		resp.Corrected = corrected
		if corrected != original {
			metrics.TypoCorrectionsTotal.Inc()
			log.Info("query corrected", zap.String("original", original), zap.String("corrected", corrected))
		}

		var kind corpus.Kind
		kind, semantic, semErr = s.rankSemantic(gctx, ix, corrected)
		resp.Corpus = kind
		return nil
	})
	_ = g.Wait()

	if semErr != nil {
		if !errors.Is(semErr, domain.ErrEncoderTimeout) && !errors.Is(semErr, domain.ErrEmbeddingProviderError) {
			return resp, semErr
		}
		resp.Degraded = true
		resp.IDs = Combine(lexical, nil)
		log.Warn("semantic ranking unavailable, serving lexical matches",
			zap.Int("lexical", len(lexical)), zap.Error(semErr))
		if len(resp.IDs) == 0 {
			return resp, semErr
		}
		return resp, nil
	}

	if resp.Corpus.IsValid() {
		metrics.SemanticCorpusTotal.WithLabelValues(string(resp.Corpus)).Inc()
	}
	resp.IDs = Combine(lexical, result.IDs(semantic))
	log.Debug("search completed",
		zap.Int("lexical", len(lexical)),
		zap.Int("semantic", len(semantic)),
		zap.String("corpus", string(resp.Corpus)),
		zap.Int("results", len(resp.IDs)),
	)
	return resp, nil
}

func (s *Service) rankSemantic(ctx context.Context, ix *index.Index, corrected string) (corpus.Kind, []result.Result, error) {
	normalized := text.Normalize(corrected)
	// Nothing to encode: blank or punctuation-only queries rank lexically only.
	if ix.Len() == 0 || normalized == "" {
		return "", nil, nil
	}
	emb, err := s.embed.Embed(ctx, normalized)
	if err != nil {
		return "", nil, fmt.Errorf("vectorize query: %w", err)
	}
	return RankSemantic(ix, emb.Embedding, s.opts.TopN)
}
