// Package embedder defines the provider-agnostic contract for turning text
// into fixed-length embedding vectors, plus a deterministic MockEmbedder for
// tests. Providers (e.g. OpenAI) implement the Embedder interface from this
// package so higher layers remain decoupled from vendor SDKs.
package embedder

import (
	"context"
	"errors"
	"hash/fnv"
	"math"

	"github.com/hupe1980/ragmesh/core"
)

// ErrEmptyInput is returned (wrapped in core.EmbeddingError) when the text
// to embed is empty. Normalization (trimming, truncation to the model's
// token limit) is the caller's responsibility.
var ErrEmptyInput = errors.New("text to embed is empty")

// Embedder converts text into a core.EmbeddingDim-length vector. Failures
// (transport, rate limit, timeout) surface as *core.EmbeddingError carrying
// the underlying cause; retry policy belongs to the caller.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// MockEmbedder is a deterministic in-process Embedder for tests & examples.
// Identical input always yields the identical vector; distinct inputs yield
// (with overwhelming probability) distinct vectors. Failures can be staged
// per input to exercise partial-failure paths.
type MockEmbedder struct {
	dim      int
	failures map[string]error
}

// NewMockEmbedder constructs a MockEmbedder producing core.EmbeddingDim vectors.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{dim: core.EmbeddingDim, failures: make(map[string]error)}
}

// FailOn stages an error for a specific input text.
func (m *MockEmbedder) FailOn(text string, err error) { m.failures[text] = err }

// Embed implements Embedder with an FNV-seeded pseudo-random unit vector.
func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, &core.EmbeddingError{Err: ErrEmptyInput}
	}
	if err, ok := m.failures[text]; ok {
		return nil, &core.EmbeddingError{Err: err}
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	state := h.Sum64()

	vec := make([]float32, m.dim)
	var norm float64
	for i := range vec {
		// xorshift64 keeps the sequence deterministic per seed.
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		v := float64(int64(state)) / float64(math.MaxInt64)
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}
