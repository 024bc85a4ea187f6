// Package supabase implements core.VectorStore against a Supabase project's
// PostgREST surface: similarity search goes through an RPC function
// (match_units style, backed by pgvector in the project's SQL) and upserts
// go through the REST table endpoint with merge-duplicates resolution.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/ragmesh/core"
)

// Options configure the Supabase-backed store.
type Options struct {
	// BaseURL is the project URL, e.g. https://xyz.supabase.co (no trailing slash).
	BaseURL string
	// APIKey is the service-role key (writes) or anon key (reads).
	APIKey string
	// Table holds the embedded records. Defaults to units_embeddings.
	Table string
	// MatchFunction is the SQL function exposed via /rest/v1/rpc. It must
	// filter by similarity >= min_similarity and order by descending
	// similarity before truncating to match_count. Defaults to match_units.
	MatchFunction string
	// HTTPClient overrides the default client (tests inject httptest here).
	HTTPClient *http.Client
}

// Store talks to Supabase PostgREST. All calls honor the caller's context
// deadline; no internal retry.
type Store struct {
	opts   Options
	client *http.Client
}

var _ core.VectorStore = (*Store)(nil)

// NewStore constructs a Store with defaults filled in.
func NewStore(optFns ...func(o *Options)) *Store {
	opts := Options{
		Table:         "units_embeddings",
		MatchFunction: "match_units",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Store{opts: opts, client: client}
}

// matchRow mirrors the row shape returned by the match function.
type matchRow struct {
	RowID      int64          `json:"row_id"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	Similarity float64        `json:"similarity"`
}

// upsertRow is the REST insert payload; the embedding column is written as a
// plain float array which PostgREST casts to vector(1536).
type upsertRow struct {
	RowID     int64          `json:"row_id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"embedding"`
}

// Query calls the match RPC. The function performs ordering, floor filtering
// and truncation server-side; the client only maps rows.
func (s *Store) Query(ctx context.Context, embedding []float32, k int, minSimilarity float64) ([]core.Match, error) {
	payload := map[string]any{
		"query_embedding": embedding,
		"match_count":     k,
		"min_similarity":  minSimilarity,
	}

	var rows []matchRow
	path := "/rest/v1/rpc/" + url.PathEscape(s.opts.MatchFunction)
	if err := s.do(ctx, http.MethodPost, path, nil, payload, &rows); err != nil {
		return nil, err
	}

	matches := make([]core.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, core.Match{
			Record: core.Record{
				RowID:    row.RowID,
				Content:  row.Content,
				Metadata: row.Metadata,
			},
			Similarity: row.Similarity,
		})
	}
	return matches, nil
}

// Upsert writes records through the table endpoint. The merge-duplicates
// preference turns the insert into an upsert on the row_id primary key, so
// re-ingesting the same rows replaces them instead of duplicating.
func (s *Store) Upsert(ctx context.Context, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]upsertRow, len(records))
	for i, rec := range records {
		rows[i] = upsertRow{
			RowID:     rec.RowID,
			Content:   rec.Content,
			Metadata:  rec.Metadata,
			Embedding: rec.Embedding,
		}
	}

	headers := map[string]string{"Prefer": "resolution=merge-duplicates"}
	path := "/rest/v1/" + url.PathEscape(s.opts.Table)
	return s.do(ctx, http.MethodPost, path, headers, rows, nil)
}

// Count asks PostgREST for an exact count via the Content-Range header.
func (s *Store) Count(ctx context.Context) (int, error) {
	path := "/rest/v1/" + url.PathEscape(s.opts.Table) + "?select=row_id"

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.opts.BaseURL+path, nil)
	if err != nil {
		return 0, err
	}
	s.setHeaders(req)
	req.Header.Set("Prefer", "count=exact")

	rsp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode >= 400 {
		return 0, fmt.Errorf("supabase http %d counting %s", rsp.StatusCode, s.opts.Table)
	}

	// Content-Range looks like "0-24/25" or "*/0".
	cr := rsp.Header.Get("Content-Range")
	idx := strings.LastIndex(cr, "/")
	if idx < 0 {
		return 0, fmt.Errorf("supabase: missing count in Content-Range %q", cr)
	}
	n, err := strconv.Atoi(cr[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("supabase: malformed Content-Range %q: %w", cr, err)
	}
	return n, nil
}

func (s *Store) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.opts.BaseURL+path, buf)
	if err != nil {
		return err
	}
	s.setHeaders(req)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rsp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()

	payload, err := io.ReadAll(rsp.Body)
	if err != nil {
		return err
	}
	if rsp.StatusCode >= 400 {
		return fmt.Errorf("supabase http %d: %s", rsp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("supabase: decoding response: %w", err)
		}
	}
	return nil
}

func (s *Store) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.opts.APIKey)
	req.Header.Set("Authorization", "Bearer "+s.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
