package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/embedder"
	"github.com/hupe1980/ragmesh/internal/testutil"
	"github.com/hupe1980/ragmesh/vectorstore"
)

func seededRetriever(t *testing.T) *Retriever {
	t.Helper()
	store := vectorstore.NewInMemoryStore()
	records := []core.Record{
		testutil.Record(1, 0),
		testutil.Record(2, 1),
		testutil.Record(3, 2),
	}
	require.NoError(t, store.Upsert(context.Background(), records))
	return New(store)
}

func TestSearch_BoundsHold(t *testing.T) {
	r := seededRetriever(t)
	ctx := context.Background()

	for _, k := range []int{1, 2, 5} {
		for _, floor := range []float64{0, 0.5, 0.99} {
			matches, err := r.Search(ctx, testutil.AxisVector(0), k, floor)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(matches), k)
			for _, m := range matches {
				assert.GreaterOrEqual(t, m.Similarity, floor)
			}
		}
	}
}

func TestSearch_SortedNonIncreasing(t *testing.T) {
	store := vectorstore.NewInMemoryStore()
	records := []core.Record{testutil.Record(1, 0)}
	rec := testutil.Record(2, 0)
	rec.Embedding = testutil.BlendVector(0, 1, 0.7)
	records = append(records, rec)
	rec2 := testutil.Record(3, 0)
	rec2.Embedding = testutil.BlendVector(0, 2, 0.3)
	records = append(records, rec2)
	require.NoError(t, store.Upsert(context.Background(), records))

	matches, err := New(store).Search(context.Background(), testutil.AxisVector(0), 10, 0)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Similarity, matches[i].Similarity)
	}
}

func TestSearch_EmptyBelowFloorIsValid(t *testing.T) {
	r := seededRetriever(t)

	matches, err := r.Search(context.Background(), testutil.AxisVector(7), 5, 0.9)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearch_ParameterValidation(t *testing.T) {
	r := seededRetriever(t)
	ctx := context.Background()

	cases := []struct {
		name string
		run  func() error
	}{
		{"zero k", func() error {
			_, err := r.Search(ctx, testutil.AxisVector(0), 0, 0)
			return err
		}},
		{"negative floor", func() error {
			_, err := r.Search(ctx, testutil.AxisVector(0), 3, -0.5)
			return err
		}},
		{"floor above one", func() error {
			_, err := r.Search(ctx, testutil.AxisVector(0), 3, 1.5)
			return err
		}},
		{"wrong dimensionality", func() error {
			_, err := r.Search(ctx, make([]float32, 8), 3, 0)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			var re *core.RetrievalError
			require.Error(t, err)
			assert.True(t, errors.As(err, &re), "want RetrievalError, got %T", err)
		})
	}
}

// failingStore simulates store-side connectivity failures.
type failingStore struct{ err error }

func (f *failingStore) Upsert(context.Context, []core.Record) error { return f.err }
func (f *failingStore) Query(context.Context, []float32, int, float64) ([]core.Match, error) {
	return nil, f.err
}
func (f *failingStore) Count(context.Context) (int, error) { return 0, f.err }

func TestSearch_StoreFailureWrapsRetrievalError(t *testing.T) {
	cause := errors.New("connection refused")
	r := New(&failingStore{err: cause})

	_, err := r.Search(context.Background(), testutil.AxisVector(0), 3, 0)
	var re *core.RetrievalError
	require.True(t, errors.As(err, &re))
	assert.True(t, errors.Is(err, cause))
}

// overshootingStore returns more rows than requested and rows below floor.
type overshootingStore struct{}

func (o *overshootingStore) Upsert(context.Context, []core.Record) error { return nil }
func (o *overshootingStore) Query(context.Context, []float32, int, float64) ([]core.Match, error) {
	return []core.Match{
		{Record: core.Record{RowID: 1}, Similarity: 0.9},
		{Record: core.Record{RowID: 2}, Similarity: 0.8},
		{Record: core.Record{RowID: 3}, Similarity: 0.7},
		{Record: core.Record{RowID: 4}, Similarity: 0.1},
	}, nil
}
func (o *overshootingStore) Count(context.Context) (int, error) { return 4, nil }

func TestSearch_ReappliesContractBounds(t *testing.T) {
	r := New(&overshootingStore{})

	matches, err := r.Search(context.Background(), testutil.AxisVector(0), 2, 0.5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, int64(1), matches[0].Record.RowID)
	assert.Equal(t, int64(2), matches[1].Record.RowID)
}

func TestSearchText_EmbedsThenSearches(t *testing.T) {
	store := vectorstore.NewInMemoryStore()
	emb := embedder.NewMockEmbedder()

	vec, err := emb.Embed(context.Background(), "three bedroom apartment")
	require.NoError(t, err)
	require.NoError(t, store.Upsert(context.Background(), []core.Record{{
		RowID:     1,
		Content:   "Unidade A, Tipologia T3",
		Embedding: vec,
	}}))

	r := New(store, func(o *Options) { o.Embedder = emb })

	matches, err := r.SearchText(context.Background(), "three bedroom apartment", 3, 0.5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(1), matches[0].Record.RowID)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-5)
}

func TestSearchText_EmbeddingFailureKeepsKind(t *testing.T) {
	emb := embedder.NewMockEmbedder()
	cause := errors.New("rate limited")
	emb.FailOn("q", cause)

	r := New(vectorstore.NewInMemoryStore(), func(o *Options) { o.Embedder = emb })

	_, err := r.SearchText(context.Background(), "q", 3, 0)
	var ee *core.EmbeddingError
	require.True(t, errors.As(err, &ee), "embedding failures must stay EmbeddingError")
}
