// Package chat wires the full pipeline into a single-session engine: embed
// the user's message, retrieve grounding records, assemble the prompt and
// complete it, appending both sides of the exchange to the conversation log.
//
// Invoke runs the pipeline on a worker goroutine and delivers the outcome
// over a channel, so callers driving a display surface never block; sync
// callers use InvokeSync. Turns within one session are strictly sequential.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/ragmesh/conversation"
	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/embedder"
	"github.com/hupe1980/ragmesh/logging"
	"github.com/hupe1980/ragmesh/model"
	"github.com/hupe1980/ragmesh/prompt"
	"github.com/hupe1980/ragmesh/retriever"
)

// DefaultPreamble is the system message opening every prompt unless
// overridden via Options.
const DefaultPreamble = "You are a helpful assistant. Keep replies concise and stay on topic."

// Options configure a Session.
type Options struct {
	// Preamble is the fixed system message at position zero of every prompt.
	Preamble string

	// TopK bounds the number of retrieved matches per turn.
	TopK int

	// MinSimilarity filters matches below the similarity floor.
	MinSimilarity float64

	// PromptBudget caps the assembled prompt's approximate token count.
	// 0 disables truncation.
	PromptBudget int

	// Per-stage deadlines. Zero disables the deadline for that stage.
	EmbedTimeout    time.Duration
	RetrieveTimeout time.Duration
	CompleteTimeout time.Duration

	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Result is the outcome of one invocation.
type Result struct {
	// InvocationID identifies this turn across logs.
	InvocationID string

	// Reply is the assistant's text. Empty when Err is set.
	Reply string

	// Matches are the retrieved records that grounded the reply, in
	// ranking order. May be empty.
	Matches []core.Match

	// Notice carries a non-fatal degradation message, e.g. when retrieval
	// failed and the turn proceeded without context.
	Notice string

	// Err is set when the turn failed (completion error, empty input).
	// The conversation history up to the failure is preserved.
	Err error
}

// Session drives a single sequential conversation over the pipeline. Safe
// for concurrent use; overlapping invocations serialize.
type Session struct {
	id        string
	log       *conversation.Log
	embedder  embedder.Embedder
	retriever *retriever.Retriever
	model     model.Model
	opts      Options

	mu sync.Mutex // one turn at a time
}

// NewSession constructs a Session over the given embedder, retriever and model.
func NewSession(e embedder.Embedder, r *retriever.Retriever, m model.Model, optFns ...func(o *Options)) *Session {
	opts := Options{
		Preamble:      DefaultPreamble,
		TopK:          8,
		MinSimilarity: 0.0,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Session{
		id:        core.NewID(),
		log:       conversation.NewLog(),
		embedder:  e,
		retriever: r,
		model:     m,
		opts:      opts,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// History returns a snapshot of the conversation so far, oldest first.
func (s *Session) History() []core.Turn { return s.log.Turns() }

// Invoke starts one turn of the pipeline on a worker goroutine and returns
// the invocation id plus a channel that delivers exactly one Result. The
// caller's goroutine never blocks on network calls.
func (s *Session) Invoke(ctx context.Context, input string) (string, <-chan Result) {
	invocationID := core.NewID()
	resultCh := make(chan Result, 1)

	go func() {
		defer close(resultCh)
		resultCh <- s.run(ctx, invocationID, input)
	}()

	return invocationID, resultCh
}

// InvokeSync runs one turn and blocks until its Result is available.
func (s *Session) InvokeSync(ctx context.Context, input string) (*Result, error) {
	_, ch := s.Invoke(ctx, input)
	res := <-ch
	if res.Err != nil {
		return &res, res.Err
	}
	return &res, nil
}

func (s *Session) run(ctx context.Context, invocationID, input string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := Result{InvocationID: invocationID}
	logger := s.opts.Logger

	input = strings.TrimSpace(input)
	if input == "" {
		res.Err = fmt.Errorf("empty input")
		return res
	}

	s.log.Append(core.NewUserTurn(input))

	matches, notice := s.retrieve(ctx, input)
	res.Matches = matches
	res.Notice = notice

	msgs := prompt.Build(s.log.Turns(), matches, s.opts.Preamble, func(o *prompt.Options) {
		o.Budget = s.opts.PromptBudget
	})

	reply, err := s.complete(ctx, msgs)
	if err != nil {
		// The turn fails visibly; the user's message stays in the log so a
		// retry sees the same history.
		logger.Error("turn failed invocation_id=%s: %v", invocationID, err)
		res.Err = err
		return res
	}

	s.log.Append(core.NewAssistantTurn(reply))
	res.Reply = reply

	logger.Info("turn completed invocation_id=%s matches=%d", invocationID, len(matches))
	return res
}

// retrieve embeds the input and queries the store. Any failure here is
// non-fatal: the turn proceeds with zero matches and a notice.
func (s *Session) retrieve(ctx context.Context, input string) ([]core.Match, string) {
	if s.retriever == nil {
		return nil, ""
	}

	vec, err := s.embed(ctx, input)
	if err != nil {
		s.opts.Logger.Warn("embedding failed, proceeding without context: %v", err)
		return nil, fmt.Sprintf("retrieval skipped: %v", err)
	}

	rctx := ctx
	if s.opts.RetrieveTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, s.opts.RetrieveTimeout)
		defer cancel()
	}

	matches, err := s.retriever.Search(rctx, vec, s.opts.TopK, s.opts.MinSimilarity)
	if err != nil {
		s.opts.Logger.Warn("retrieval failed, proceeding without context: %v", err)
		return nil, fmt.Sprintf("retrieval skipped: %v", err)
	}
	return matches, ""
}

func (s *Session) embed(ctx context.Context, input string) ([]float32, error) {
	if s.embedder == nil {
		return nil, &core.EmbeddingError{Err: fmt.Errorf("no embedder configured")}
	}
	if s.opts.EmbedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.EmbedTimeout)
		defer cancel()
	}
	return s.embedder.Embed(ctx, input)
}

func (s *Session) complete(ctx context.Context, msgs []core.Message) (string, error) {
	if s.opts.CompleteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.CompleteTimeout)
		defer cancel()
	}

	reply, err := s.model.Complete(ctx, msgs)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}
