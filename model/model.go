// Package model defines the provider-agnostic completion boundary of the
// pipeline: ordered role-tagged messages in, assistant text out.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Surface failures as *core.CompletionError so the chat engine can
//     apply its degradation policy uniformly
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from
// this package so higher layers remain decoupled from vendor SDKs.
package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/ragmesh/core"
)

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock"
}

// Model is the minimal interface the chat engine needs to drive generation.
type Model interface {
	// Complete sends the prompt and returns the assistant's response text.
	// Failures (transport, rate limit, timeout) wrap as *core.CompletionError.
	Complete(ctx context.Context, messages []core.Message) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are keyed on the final user message; unknown prompts get a
// deterministic echo.
type MockModel struct {
	info      Info
	responses map[string]string
	failure   error
}

var _ Model = (*MockModel)(nil)

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// Fail makes every subsequent Complete call return the given cause wrapped
// as a CompletionError. Pass nil to clear.
func (m *MockModel) Fail(err error) { m.failure = err }

// Complete implements Model.
func (m *MockModel) Complete(_ context.Context, messages []core.Message) (string, error) {
	if m.failure != nil {
		return "", &core.CompletionError{Err: m.failure}
	}
	if len(messages) == 0 {
		return "", &core.CompletionError{Err: fmt.Errorf("no messages provided")}
	}

	var lastUser string
	for _, msg := range messages {
		if msg.Role == core.RoleUser {
			lastUser = msg.Content
		}
	}
	if rsp, ok := m.responses[lastUser]; ok {
		return rsp, nil
	}
	return "Mock response to: " + strings.TrimSpace(lastUser), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
