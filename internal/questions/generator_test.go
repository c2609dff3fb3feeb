package questions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"verilens/internal/llm"
	"verilens/internal/model"
	"verilens/internal/worker"
)

type stubProvider struct {
	response  string
	err       error
	gotPrompt string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.gotPrompt = req.Prompt
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Text: s.response}, nil
}

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func newGenerator(provider llm.Provider) *Generator {
	return NewGenerator(provider, nil, worker.NewRetrier(0, time.Millisecond, time.Millisecond), 3)
}

func TestGenerateParsesQuestions(t *testing.T) {
	provider := &stubProvider{
		response: "Is the Eiffel Tower located in Berlin?\nWhen was the Eiffel Tower built?\n\nWho designed the Eiffel Tower?",
	}
	g := newGenerator(provider)

	questions, err := g.Generate(context.Background(), "The Eiffel Tower is located in Berlin.")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := []model.Question{
		{Text: "Is the Eiffel Tower located in Berlin?"},
		{Text: "When was the Eiffel Tower built?"},
		{Text: "Who designed the Eiffel Tower?"},
	}
	if diff := cmp.Diff(want, questions); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateStripsListMarkers(t *testing.T) {
	provider := &stubProvider{
		response: "1. First question?\n- Second question?\n* Third question?",
	}
	g := newGenerator(provider)

	questions, err := g.Generate(context.Background(), "content")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := []model.Question{
		{Text: "First question?"},
		{Text: "Second question?"},
		{Text: "Third question?"},
	}
	if diff := cmp.Diff(want, questions); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateInsufficientContext(t *testing.T) {
	tests := []string{
		"not enough context",
		"Not enough context",
		"NOT ENOUGH CONTEXT.",
	}

	for _, response := range tests {
		provider := &stubProvider{response: response}
		g := newGenerator(provider)

		_, err := g.Generate(context.Background(), "lovely weather today")
		if !errors.Is(err, ErrInsufficientContext) {
			t.Errorf("Generate() with %q error = %v, want ErrInsufficientContext", response, err)
		}
	}
}

func TestGeneratePropagatesProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("model unavailable")}
	g := newGenerator(provider)

	_, err := g.Generate(context.Background(), "content")
	if err == nil {
		t.Fatal("Generate() expected error")
	}
	if errors.Is(err, ErrInsufficientContext) {
		t.Error("provider failure must not read as insufficient context")
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	provider := &stubProvider{response: "\n\n"}
	g := newGenerator(provider)

	if _, err := g.Generate(context.Background(), "content"); err == nil {
		t.Error("Generate() expected error for empty response")
	}
}

func TestGeneratePromptMentionsCount(t *testing.T) {
	provider := &stubProvider{response: "q?"}
	g := NewGenerator(provider, nil, worker.NewRetrier(0, time.Millisecond, time.Millisecond), 5)

	if _, err := g.Generate(context.Background(), "content"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(provider.gotPrompt, "generate 5 specific") {
		t.Errorf("prompt missing question count: %q", provider.gotPrompt)
	}
}
