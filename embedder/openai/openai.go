// Package openai implements embedder.Embedder using the OpenAI Embeddings
// API. The default model is text-embedding-3-small whose 1536 dimensions
// match core.EmbeddingDim.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/embedder"
)

// Options configure the OpenAI embedder.
type Options struct {
	Model  string
	APIKey string
}

// Embedder wraps the OpenAI Embeddings API behind the generic embedder.Embedder interface.
type Embedder struct {
	client *openai.Client
	opts   Options
}

var _ embedder.Embedder = (*Embedder)(nil)

// NewEmbedder creates a new OpenAI embedder using the official client.
func NewEmbedder(optFns ...func(o *Options)) *Embedder {
	opts := Options{Model: "text-embedding-3-small"}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)

	return &Embedder{client: &client, opts: opts}
}

// NewEmbedderFromClient creates a new OpenAI embedder from an existing client.
func NewEmbedderFromClient(client *openai.Client, optFns ...func(o *Options)) *Embedder {
	opts := Options{Model: "text-embedding-3-small"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Embedder{client: client, opts: opts}
}

// Embed implements embedder.Embedder. The returned vector always has
// core.EmbeddingDim entries; anything else from the API is treated as a
// malformed response.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, &core.EmbeddingError{Err: embedder.ErrEmptyInput}
	}

	rsp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
		Model: openai.EmbeddingModel(e.opts.Model),
	})
	if err != nil {
		return nil, &core.EmbeddingError{Err: err}
	}

	if len(rsp.Data) == 0 || len(rsp.Data[0].Embedding) == 0 {
		return nil, &core.EmbeddingError{Err: fmt.Errorf("no embedding returned for model %s", e.opts.Model)}
	}

	raw := rsp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	if len(vec) != core.EmbeddingDim {
		return nil, &core.EmbeddingError{Err: fmt.Errorf("model %s returned %d dimensions, want %d", e.opts.Model, len(vec), core.EmbeddingDim)}
	}
	return vec, nil
}
