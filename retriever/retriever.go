// Package retriever turns a query embedding into ranked retrieval matches.
// Ranking and floor filtering are delegated entirely to the vector store's
// nearest-neighbor search; the retriever's own logic is parameter
// validation and result mapping, so wrong inputs surface as
// *core.RetrievalError instead of silent empty results.
package retriever

import (
	"context"
	"fmt"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/embedder"
	"github.com/hupe1980/ragmesh/logging"
)

// Options configure the Retriever.
type Options struct {
	// Embedder enables SearchText. Optional when only Search is used.
	Embedder embedder.Embedder
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Retriever performs validated top-k similarity search over a core.VectorStore.
type Retriever struct {
	store core.VectorStore
	opts  Options
}

// New constructs a Retriever over the given store.
func New(store core.VectorStore, optFns ...func(o *Options)) *Retriever {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Retriever{store: store, opts: opts}
}

// Search returns at most k matches with similarity >= minSimilarity, ordered
// by descending similarity. An empty result is valid when nothing clears the
// floor. Malformed parameters and store failures wrap as *core.RetrievalError.
func (r *Retriever) Search(ctx context.Context, queryVector []float32, k int, minSimilarity float64) ([]core.Match, error) {
	if k <= 0 {
		return nil, &core.RetrievalError{Err: fmt.Errorf("k must be > 0, got %d", k)}
	}
	if minSimilarity < 0 || minSimilarity > 1 {
		return nil, &core.RetrievalError{Err: fmt.Errorf("minSimilarity must be in [0,1], got %v", minSimilarity)}
	}
	if len(queryVector) != core.EmbeddingDim {
		return nil, &core.RetrievalError{Err: fmt.Errorf("query embedding has %d dimensions, want %d", len(queryVector), core.EmbeddingDim)}
	}

	matches, err := r.store.Query(ctx, queryVector, k, minSimilarity)
	if err != nil {
		return nil, &core.RetrievalError{Err: err}
	}

	// The store owns ranking; the retriever re-applies the bounds of the
	// contract so a misbehaving backend cannot leak extra or sub-floor rows.
	filtered := matches[:0]
	for _, m := range matches {
		if m.Similarity < minSimilarity {
			continue
		}
		filtered = append(filtered, m)
	}
	if len(filtered) > k {
		filtered = filtered[:k]
	}

	r.opts.Logger.Debug("similarity search completed k=%d min_similarity=%v matches=%d", k, minSimilarity, len(filtered))
	return filtered, nil
}

// SearchText embeds the query text and delegates to Search. Embedding
// failures keep their *core.EmbeddingError kind so callers can distinguish
// the failing stage.
func (r *Retriever) SearchText(ctx context.Context, query string, k int, minSimilarity float64) ([]core.Match, error) {
	if r.opts.Embedder == nil {
		return nil, &core.RetrievalError{Err: fmt.Errorf("no embedder configured for text search")}
	}
	vec, err := r.opts.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.Search(ctx, vec, k, minSimilarity)
}
