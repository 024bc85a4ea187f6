package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/internal/testutil"
)

// Interface compliance (compile-time assertion)
var _ core.VectorStore = (*Store)(nil)

// fakePostgREST emulates the three endpoints the store uses: the match RPC,
// the table upsert and the exact count.
type fakePostgREST struct {
	mu      sync.Mutex
	rows    map[int64]upsertRow
	matches []matchRow

	lastRPCPayload map[string]any
	lastPrefer     string
	lastAPIKey     string
}

func newFakePostgREST() *fakePostgREST {
	return &fakePostgREST{rows: make(map[int64]upsertRow)}
}

func (f *fakePostgREST) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/rpc/match_units", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastAPIKey = r.Header.Get("apikey")
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.lastRPCPayload = payload
		_ = json.NewEncoder(w).Encode(f.matches)
	})
	mux.HandleFunc("/rest/v1/units_embeddings", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodHead:
			w.Header().Set("Content-Range", fmt.Sprintf("*/%d", len(f.rows)))
			w.WriteHeader(http.StatusOK)
		case http.MethodPost:
			f.lastPrefer = r.Header.Get("Prefer")
			var incoming []upsertRow
			if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			for _, row := range incoming {
				f.rows[row.RowID] = row
			}
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	return mux
}

func newTestStore(t *testing.T) (*Store, *fakePostgREST) {
	t.Helper()
	fake := newFakePostgREST()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	store := NewStore(func(o *Options) {
		o.BaseURL = srv.URL
		o.APIKey = "test-key"
		o.HTTPClient = srv.Client()
	})
	return store, fake
}

func TestStore_QueryMapsRowsAndPayload(t *testing.T) {
	store, fake := newTestStore(t)
	fake.matches = []matchRow{
		{RowID: 12, Content: "Unidade A, Bloco 1", Metadata: map[string]any{"bloco": "1"}, Similarity: 0.92},
		{RowID: 7, Content: "Unidade H, Bloco 2", Metadata: map[string]any{"bloco": "2"}, Similarity: 0.81},
	}

	matches, err := store.Query(context.Background(), testutil.AxisVector(0), 8, 0.5)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, int64(12), matches[0].Record.RowID)
	assert.Equal(t, 0.92, matches[0].Similarity)
	assert.Equal(t, "Unidade H, Bloco 2", matches[1].Record.Content)

	// The RPC payload carries exactly the three parameters of the contract.
	assert.Equal(t, float64(8), fake.lastRPCPayload["match_count"])
	assert.Equal(t, 0.5, fake.lastRPCPayload["min_similarity"])
	assert.NotNil(t, fake.lastRPCPayload["query_embedding"])
	assert.Equal(t, "test-key", fake.lastAPIKey)
}

func TestStore_QueryEmptyResultIsNotAnError(t *testing.T) {
	store, _ := newTestStore(t)

	matches, err := store.Query(context.Background(), testutil.AxisVector(0), 8, 0.99)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStore_QueryHTTPErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"function match_units does not exist"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	store := NewStore(func(o *Options) {
		o.BaseURL = srv.URL
		o.APIKey = "test-key"
		o.HTTPClient = srv.Client()
	})

	_, err := store.Query(context.Background(), testutil.AxisVector(0), 8, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supabase http 404")
}

func TestStore_UpsertMergesDuplicates(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()

	records := []core.Record{testutil.Record(1, 0), testutil.Record(2, 1)}
	require.NoError(t, store.Upsert(ctx, records))
	assert.Equal(t, "resolution=merge-duplicates", fake.lastPrefer)

	// Re-ingesting the same rows leaves the count unchanged.
	require.NoError(t, store.Upsert(ctx, records))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_UpsertEmptyBatchIsNoop(t *testing.T) {
	store, fake := newTestStore(t)
	require.NoError(t, store.Upsert(context.Background(), nil))
	assert.Empty(t, fake.rows)
}

func TestStore_CountParsesContentRange(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []core.Record{
		testutil.Record(1, 0), testutil.Record(2, 1), testutil.Record(3, 2),
	}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, fake.rows, 3)
}
