package model

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/ragmesh/core"
)

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("test-model")
	m.AddResponse("which units have 3 bedrooms?", "Units H and K are T3.")

	rsp, err := m.Complete(context.Background(), []core.Message{
		core.SystemMessage("preamble"),
		core.UserMessage("which units have 3 bedrooms?"),
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if rsp != "Units H and K are T3." {
		t.Fatalf("unexpected response: %q", rsp)
	}
}

func TestMockModel_EchoFallbackUsesLastUserMessage(t *testing.T) {
	m := NewMockModel("test-model")

	rsp, err := m.Complete(context.Background(), []core.Message{
		core.UserMessage("first"),
		core.AssistantMessage("ack"),
		core.UserMessage("second"),
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if rsp != "Mock response to: second" {
		t.Fatalf("unexpected response: %q", rsp)
	}
}

func TestMockModel_FailureWrapsCompletionError(t *testing.T) {
	m := NewMockModel("test-model")
	cause := errors.New("model overloaded")
	m.Fail(cause)

	_, err := m.Complete(context.Background(), []core.Message{core.UserMessage("hi")})
	var ce *core.CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompletionError, got %T", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to survive wrapping")
	}

	m.Fail(nil)
	if _, err := m.Complete(context.Background(), []core.Message{core.UserMessage("hi")}); err != nil {
		t.Fatalf("expected recovery after clearing failure, got %v", err)
	}
}

func TestMockModel_EmptyPrompt(t *testing.T) {
	m := NewMockModel("test-model")
	_, err := m.Complete(context.Background(), nil)
	var ce *core.CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompletionError for empty prompt, got %v", err)
	}
}
