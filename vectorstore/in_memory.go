package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/hupe1980/ragmesh/core"
)

// InMemoryStore is a volatile core.VectorStore holding records in a process
// local slice with exact cosine scoring. It is safe for concurrent access
// and best suited for tests or single-machine demos; swap for the Supabase
// or Postgres store when the corpus should survive the process.
//
// Ties on equal similarity preserve insertion order, keeping results
// deterministic for a fixed store state.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []core.Record
	byRowID map[int64]int // row id -> index into records
}

var _ core.VectorStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory vector store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byRowID: make(map[int64]int)}
}

// Upsert inserts or replaces records keyed by RowID.
func (s *InMemoryStore) Upsert(_ context.Context, records []core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if len(rec.Embedding) != core.EmbeddingDim {
			return fmt.Errorf("record %d: embedding has %d dimensions, want %d", rec.RowID, len(rec.Embedding), core.EmbeddingDim)
		}
		if idx, ok := s.byRowID[rec.RowID]; ok {
			s.records[idx] = rec
			continue
		}
		s.byRowID[rec.RowID] = len(s.records)
		s.records = append(s.records, rec)
	}
	return nil
}

// Query scores every record with cosine similarity, filters to the floor,
// orders descending and truncates to k.
func (s *InMemoryStore) Query(_ context.Context, embedding []float32, k int, minSimilarity float64) ([]core.Match, error) {
	if len(embedding) != core.EmbeddingDim {
		return nil, fmt.Errorf("query embedding has %d dimensions, want %d", len(embedding), core.EmbeddingDim)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]core.Match, 0, len(s.records))
	for _, rec := range s.records {
		sim := cosineSimilarity(embedding, rec.Embedding)
		if sim < minSimilarity {
			continue
		}
		matches = append(matches, core.Match{Record: rec, Similarity: sim})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Count reports the number of stored records.
func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// cosineSimilarity maps the cosine of the angle between a and b into [0,1]
// range semantics used by the stores: 1 - cosine_distance.
func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
