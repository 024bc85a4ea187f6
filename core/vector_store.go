package core

import "context"

// VectorStore defines the similarity-search contract consumed by the
// retriever plus the upsert side used by ingestion. Implementations back
// Query with a nearest-neighbor index computing similarity as
// 1 - cosine_distance(embedding, query); results come back ordered by
// descending similarity, filtered to minSimilarity and truncated to k.
//
// Ties on equal similarity keep whatever stable order the store returns,
// which must be deterministic for a fixed store state.
type VectorStore interface {
	// Upsert inserts or replaces records keyed by RowID. Safe to re-run.
	Upsert(ctx context.Context, records []Record) error

	// Query returns at most k matches with similarity >= minSimilarity,
	// ordered by descending similarity. An empty result is not an error.
	Query(ctx context.Context, embedding []float32, k int, minSimilarity float64) ([]Match, error)

	// Count reports the number of stored records.
	Count(ctx context.Context) (int, error)
}
