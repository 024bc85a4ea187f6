// Package ragmesh provides a high-level façade over the retrieval-augmented
// chat pipeline (embedding, vector search, prompt assembly, completion) and
// the CSV ingestion pipeline feeding it. Most applications interact with
// this package by:
//  1. Creating a RagMesh via New() (optionally overriding default in-memory services)
//     or FromConfig() to wire the OpenAI + Supabase production stack
//  2. Ingesting source rows into the vector store (Ingest / IngestFile)
//  3. Opening a chat session and invoking it asynchronously (Invoke) or
//     synchronously (InvokeSync)
//
// All defaults are safe for local development and testing: a deterministic
// mock embedder, an in-memory vector store and a mock model. Production
// deployments supply the OpenAI-backed embedder and model and a Supabase or
// Postgres store, typically via FromConfig.
package ragmesh

import (
	"context"
	"fmt"

	"github.com/hupe1980/ragmesh/chat"
	"github.com/hupe1980/ragmesh/config"
	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/embedder"
	openaiembedder "github.com/hupe1980/ragmesh/embedder/openai"
	"github.com/hupe1980/ragmesh/ingest"
	"github.com/hupe1980/ragmesh/logging"
	"github.com/hupe1980/ragmesh/model"
	openaimodel "github.com/hupe1980/ragmesh/model/openai"
	"github.com/hupe1980/ragmesh/retriever"
	"github.com/hupe1980/ragmesh/vectorstore"
	"github.com/hupe1980/ragmesh/vectorstore/postgres"
	"github.com/hupe1980/ragmesh/vectorstore/supabase"
)

// Options configures the RagMesh instance.
type Options struct {
	// Embedder turns text into vectors. Defaults to the deterministic mock.
	Embedder embedder.Embedder

	// Store persists embedded records. Defaults to in-memory.
	Store core.VectorStore

	// Model produces completions. Defaults to the mock model.
	Model model.Model

	// IngestWorkers bounds the ingestion worker pool.
	IngestWorkers int

	// Logger defaults to NoOp logger if nil.
	Logger logging.Logger
}

// RagMesh is the high-level façade aggregating the pipeline components.
type RagMesh struct {
	opts      Options
	retriever *retriever.Retriever
	pipeline  *ingest.Pipeline
}

// New creates a new RagMesh instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *RagMesh {
	opts := Options{
		Embedder:      embedder.NewMockEmbedder(),
		Store:         vectorstore.NewInMemoryStore(),
		Model:         model.NewMockModel("mock"),
		IngestWorkers: 4,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := retriever.New(opts.Store, func(o *retriever.Options) {
		o.Embedder = opts.Embedder
		o.Logger = opts.Logger
	})
	p := ingest.New(opts.Embedder, opts.Store, func(o *ingest.Options) {
		o.Workers = opts.IngestWorkers
		o.Logger = opts.Logger
	})

	return &RagMesh{opts: opts, retriever: r, pipeline: p}
}

// FromConfig wires the production stack from a validated Config: OpenAI
// embedder and chat model, and a Supabase store (or Postgres when only
// POSTGRES_URL is set). Overrides still apply on top.
func FromConfig(cfg *config.Config, optFns ...func(o *Options)) (*RagMesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := storeFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	defaults := func(o *Options) {
		o.Embedder = openaiembedder.NewEmbedder(func(eo *openaiembedder.Options) {
			eo.Model = cfg.EmbeddingModel
			eo.APIKey = cfg.OpenAIAPIKey
		})
		o.Model = openaimodel.NewModel(func(mo *openaimodel.Options) {
			mo.Model = cfg.ChatModel
			mo.APIKey = cfg.OpenAIAPIKey
		})
		o.Store = store
	}

	return New(append([]func(o *Options){defaults}, optFns...)...), nil
}

func storeFromConfig(cfg *config.Config) (core.VectorStore, error) {
	if cfg.SupabaseURL != "" {
		return supabase.NewStore(func(o *supabase.Options) {
			o.BaseURL = cfg.SupabaseURL
			o.APIKey = cfg.SupabaseKey
			o.MatchFunction = cfg.MatchFunction
		}), nil
	}
	if cfg.PostgresURL != "" {
		store, err := postgres.NewStore(func(o *postgres.Options) {
			o.URL = cfg.PostgresURL
		})
		if err != nil {
			return nil, fmt.Errorf("wiring postgres store: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("config names neither a supabase nor a postgres store")
}

// NewSession opens a chat session over the configured pipeline. Options set
// here (preamble, top-k, similarity floor, timeouts) apply to every turn.
func (m *RagMesh) NewSession(optFns ...func(o *chat.Options)) *chat.Session {
	defaults := func(o *chat.Options) {
		o.Logger = m.opts.Logger
	}
	return chat.NewSession(m.opts.Embedder, m.retriever, m.opts.Model,
		append([]func(o *chat.Options){defaults}, optFns...)...)
}

// SessionFromConfig opens a chat session with the tunables (top-k,
// similarity floor, per-stage timeouts) taken from cfg.
func (m *RagMesh) SessionFromConfig(cfg *config.Config, optFns ...func(o *chat.Options)) *chat.Session {
	defaults := func(o *chat.Options) {
		o.TopK = cfg.TopK
		o.MinSimilarity = cfg.MinSimilarity
		o.EmbedTimeout = cfg.EmbedTimeout
		o.RetrieveTimeout = cfg.RetrieveTimeout
		o.CompleteTimeout = cfg.CompleteTimeout
	}
	return m.NewSession(append([]func(o *chat.Options){defaults}, optFns...)...)
}

// Ingest embeds and upserts the given rows, reporting per-row failures.
func (m *RagMesh) Ingest(ctx context.Context, rows []ingest.Row) (*ingest.Report, error) {
	return m.pipeline.Ingest(ctx, rows)
}

// IngestFile loads a CSV file and ingests its rows.
func (m *RagMesh) IngestFile(ctx context.Context, path string) (*ingest.Report, error) {
	return m.pipeline.IngestFile(ctx, path)
}

// Retriever exposes the underlying retriever for direct similarity search.
func (m *RagMesh) Retriever() *retriever.Retriever { return m.retriever }

// Store exposes the underlying vector store.
func (m *RagMesh) Store() core.VectorStore { return m.opts.Store }
