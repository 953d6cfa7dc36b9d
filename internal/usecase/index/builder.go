package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jdih-search/internal/domain"
	"github.com/kailas-cloud/jdih-search/internal/domain/corpus"
	"github.com/kailas-cloud/jdih-search/internal/domain/text"
	"github.com/kailas-cloud/jdih-search/internal/metrics"
)

// Loader supplies the filtered corpus.
type Loader interface {
	Load(ctx context.Context) (corpus.Corpus, error)
}

// Builder loads the corpus and encodes every document once.
type Builder struct {
	loader      Loader
	embed       domain.Embedder
	concurrency int
	logger      *zap.Logger
}

// NewBuilder creates a builder encoding with up to concurrency parallel calls.
func NewBuilder(loader Loader, embed domain.Embedder, concurrency int, logger *zap.Logger) *Builder {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{loader: loader, embed: embed, concurrency: concurrency, logger: logger}
}

// Build loads the corpus and builds an index from it.
// Every failure wraps domain.ErrConfiguration.
func (b *Builder) Build(ctx context.Context) (*Index, error) {
	c, err := b.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load corpus: %w", domain.ErrConfiguration, err)
	}
	return b.BuildFrom(ctx, c)
}

// BuildFrom indexes an already loaded corpus.
func (b *Builder) BuildFrom(ctx context.Context, c corpus.Corpus) (*Index, error) {
	if err := checkUniqueIDs(c); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	start := time.Now()
	texts := make([]string, 0, c.Len())
	for i := range c.Solutions {
		texts = append(texts, text.Normalize(c.Solutions[i].EmbeddingText()))
	}
	for i := range c.Regulations {
		texts = append(texts, text.Normalize(c.Regulations[i].EmbeddingText()))
	}

	vectors, err := b.encodeAll(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: encode corpus: %w", domain.ErrConfiguration, err)
	}

	ix, err := New(c, vectors[:len(c.Solutions):len(c.Solutions)], vectors[len(c.Solutions):])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	metrics.IndexedDocuments.WithLabelValues(string(corpus.Solutions)).Set(float64(len(ix.solutions)))
	metrics.IndexedDocuments.WithLabelValues(string(corpus.Regulations)).Set(float64(len(ix.regulations)))

	b.logger.Info("Search index built",
		zap.Int("solutions", len(ix.solutions)),
		zap.Int("regulations", len(ix.regulations)),
		zap.Int("dim", ix.Dim()),
		zap.Duration("took", time.Since(start)),
	)
	return ix, nil
}

// encodeAll embeds texts on an ants pool. The first failure cancels the rest.
func (b *Builder) encodeAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vectors, nil
	}

	pool, err := ants.NewPool(min(b.concurrency, len(texts)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i, t := range texts {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			res, err := b.embed.Embed(ctx, t)
			if err != nil {
				fail(fmt.Errorf("document %d: %w", i, err))
				return
			}
			vectors[i] = res.Embedding
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("submit document %d: %w", i, submitErr))
			break
		}
		if (i+1)%500 == 0 {
			b.logger.Debug("Encoding corpus", zap.Int("submitted", i+1), zap.Int("total", len(texts)))
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, fmt.Errorf("encode corpus: %w", err)
	}
	return vectors, nil
}

func checkUniqueIDs(c corpus.Corpus) error {
	seen := make(map[int64]struct{}, c.Len())
	for i := range c.Solutions {
		id := c.Solutions[i].ID
		if _, dup := seen[id]; dup {
			return domain.NewDuplicateID(id)
		}
		seen[id] = struct{}{}
	}
	for i := range c.Regulations {
		id := c.Regulations[i].ID
		if _, dup := seen[id]; dup {
			return domain.NewDuplicateID(id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func commonDim(vectors [][]float32) (int, error) {
	dim := 0
	for i, v := range vectors {
		if len(v) == 0 {
			return 0, fmt.Errorf("document %d: empty embedding: %w", i, domain.ErrVectorDimMismatch)
		}
		if dim == 0 {
			dim = len(v)
			continue
		}
		if len(v) != dim {
			return 0, fmt.Errorf("document %d: got %d, want %d: %w", i, len(v), dim, domain.ErrVectorDimMismatch)
		}
	}
	return dim, nil
}
