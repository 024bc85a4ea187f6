package vectorstore

import (
	"context"
	"testing"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/internal/testutil"
)

// Interface compliance (compile-time assertion)
var _ core.VectorStore = (*InMemoryStore)(nil)

func seedStore(t *testing.T, s *InMemoryStore) {
	t.Helper()
	records := []core.Record{
		testutil.Record(1, 0),
		testutil.Record(2, 1),
		testutil.Record(3, 2),
	}
	// Record 4 leans toward axis 0 but with lower similarity than record 1.
	rec4 := testutil.Record(4, 0)
	rec4.Embedding = testutil.BlendVector(0, 3, 0.5)
	records = append(records, rec4)

	if err := s.Upsert(context.Background(), records); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}
}

func TestInMemoryStore_QueryOrderingAndTruncation(t *testing.T) {
	s := NewInMemoryStore()
	seedStore(t, s)

	matches, err := s.Query(context.Background(), testutil.AxisVector(0), 2, 0.1)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Record.RowID != 1 || matches[1].Record.RowID != 4 {
		t.Fatalf("unexpected ranking: %d then %d", matches[0].Record.RowID, matches[1].Record.RowID)
	}
	if matches[0].Similarity < matches[1].Similarity {
		t.Fatal("results must be ordered by descending similarity")
	}
}

func TestInMemoryStore_QueryFloorFiltering(t *testing.T) {
	s := NewInMemoryStore()
	seedStore(t, s)

	// Floor above every similarity: empty result, no error.
	matches, err := s.Query(context.Background(), testutil.AxisVector(5), 10, 0.9)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected empty result, got %d matches", len(matches))
	}
}

func TestInMemoryStore_QueryRejectsWrongDimensionality(t *testing.T) {
	s := NewInMemoryStore()
	seedStore(t, s)

	if _, err := s.Query(context.Background(), make([]float32, 3), 5, 0); err == nil {
		t.Fatal("expected dimensionality error")
	}
}

func TestInMemoryStore_UpsertIsIdempotent(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	records := []core.Record{testutil.Record(1, 0), testutil.Record(2, 1)}
	if err := s.Upsert(ctx, records); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := s.Upsert(ctx, records); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("re-ingesting the same rows must not duplicate: want 2, got %d", n)
	}
}

func TestInMemoryStore_UpsertReplacesContent(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	rec := testutil.Record(7, 0)
	if err := s.Upsert(ctx, []core.Record{rec}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	rec.Content = "updated summary"
	if err := s.Upsert(ctx, []core.Record{rec}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	matches, err := s.Query(ctx, testutil.AxisVector(0), 1, 0)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Record.Content != "updated summary" {
		t.Fatalf("expected replaced content, got %+v", matches)
	}
}

func TestInMemoryStore_TiesPreserveInsertionOrder(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	// Same embedding, distinct row ids: identical similarity.
	a := testutil.Record(10, 4)
	b := testutil.Record(11, 4)
	if err := s.Upsert(ctx, []core.Record{a, b}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		matches, err := s.Query(ctx, testutil.AxisVector(4), 2, 0)
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if matches[0].Record.RowID != 10 || matches[1].Record.RowID != 11 {
			t.Fatalf("tie order must be deterministic, got %d then %d", matches[0].Record.RowID, matches[1].Record.RowID)
		}
	}
}
