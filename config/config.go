// Package config loads the explicit configuration struct passed into
// component constructors. Values come from the process environment (with
// optional .env support via godotenv); required credentials are validated
// up front so a misconfigured process fails at startup with a clear
// diagnostic instead of at first use.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults mirroring the retriever and model defaults of the original
// assistant. TopK and MinSimilarity are user-facing tunables.
const (
	DefaultEmbeddingModel  = "text-embedding-3-small"
	DefaultChatModel       = "gpt-4o-mini"
	DefaultMatchFunction   = "match_units"
	DefaultTopK            = 8
	DefaultMinSimilarity   = 0.0
	DefaultEmbedTimeout    = 30 * time.Second
	DefaultRetrieveTimeout = 30 * time.Second
	DefaultCompleteTimeout = 60 * time.Second
)

// Config aggregates credentials and tunables for the pipeline. It is plain
// data: pass it (or individual fields) into constructors, never read the
// environment from inside a component.
type Config struct {
	// OpenAIAPIKey authenticates embedding and completion calls.
	OpenAIAPIKey string

	// SupabaseURL is the project base URL, e.g. https://xyz.supabase.co.
	SupabaseURL string
	// SupabaseKey is the service-role key, falling back to the anon key.
	SupabaseKey string

	// PostgresURL optionally points the pgvector-backed store at a database.
	// Empty means the postgres store is not in play.
	PostgresURL string

	EmbeddingModel string
	ChatModel      string
	MatchFunction  string

	TopK          int
	MinSimilarity float64

	EmbedTimeout    time.Duration
	RetrieveTimeout time.Duration
	CompleteTimeout time.Duration
}

// FromEnv builds a Config from the process environment. A .env file in the
// working directory is loaded first without overriding existing variables.
// Missing required credentials produce an error naming every absent key.
func FromEnv() (*Config, error) {
	// Best effort; absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		SupabaseURL:     strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseKey:     os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		PostgresURL:     os.Getenv("POSTGRES_URL"),
		EmbeddingModel:  envOr("EMBEDDING_MODEL", DefaultEmbeddingModel),
		ChatModel:       envOr("CHAT_MODEL", DefaultChatModel),
		MatchFunction:   envOr("RAGMESH_MATCH_FN", DefaultMatchFunction),
		TopK:            DefaultTopK,
		MinSimilarity:   DefaultMinSimilarity,
		EmbedTimeout:    DefaultEmbedTimeout,
		RetrieveTimeout: DefaultRetrieveTimeout,
		CompleteTimeout: DefaultCompleteTimeout,
	}

	if cfg.SupabaseKey == "" {
		cfg.SupabaseKey = os.Getenv("SUPABASE_ANON_KEY")
	}

	var err error
	if cfg.TopK, err = envInt("RAGMESH_TOP_K", DefaultTopK); err != nil {
		return nil, err
	}
	if cfg.MinSimilarity, err = envFloat("RAGMESH_MIN_SIMILARITY", DefaultMinSimilarity); err != nil {
		return nil, err
	}
	if cfg.EmbedTimeout, err = envDuration("RAGMESH_EMBED_TIMEOUT", DefaultEmbedTimeout); err != nil {
		return nil, err
	}
	if cfg.RetrieveTimeout, err = envDuration("RAGMESH_RETRIEVE_TIMEOUT", DefaultRetrieveTimeout); err != nil {
		return nil, err
	}
	if cfg.CompleteTimeout, err = envDuration("RAGMESH_COMPLETE_TIMEOUT", DefaultCompleteTimeout); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required credentials and tunable ranges. Called by FromEnv
// and usable directly on hand-built configs in tests.
func (c *Config) Validate() error {
	var missing []string
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.SupabaseURL == "" && c.PostgresURL == "" {
		missing = append(missing, "SUPABASE_URL (or POSTGRES_URL)")
	}
	if c.SupabaseURL != "" && c.SupabaseKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY or SUPABASE_ANON_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.TopK < 1 {
		return fmt.Errorf("RAGMESH_TOP_K must be > 0, got %d", c.TopK)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("RAGMESH_MIN_SIMILARITY must be in [0,1], got %v", c.MinSimilarity)
	}
	if c.EmbedTimeout <= 0 || c.RetrieveTimeout <= 0 || c.CompleteTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
