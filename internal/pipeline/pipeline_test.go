package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"verilens/internal/evidence"
	"verilens/internal/llm"
	"verilens/internal/model"
	"verilens/internal/questions"
	"verilens/internal/search"
	"verilens/internal/verify"
	"verilens/internal/worker"
)

// scriptedProvider answers the question-generation prompt with a fixed
// question list and verification prompts with per-question responses
type scriptedProvider struct {
	questions      string
	generateErr    error
	verifications  map[string]string
	verificationFn func(prompt string) (string, error)
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if strings.Contains(req.Prompt, "Critically evaluate") {
		if s.generateErr != nil {
			return nil, s.generateErr
		}
		return &llm.CompletionResponse{Text: s.questions}, nil
	}

	if s.verificationFn != nil {
		text, err := s.verificationFn(req.Prompt)
		if err != nil {
			return nil, err
		}
		return &llm.CompletionResponse{Text: text}, nil
	}
	for question, response := range s.verifications {
		if strings.Contains(req.Prompt, question) {
			return &llm.CompletionResponse{Text: response}, nil
		}
	}
	return &llm.CompletionResponse{Text: "Verification Status: Cannot Verify"}, nil
}

func (s *scriptedProvider) IsAvailable(ctx context.Context) bool { return true }

type fixedWebSearcher struct {
	results []search.WebResult
}

func (f *fixedWebSearcher) Search(ctx context.Context, query string, maxResults int) ([]search.WebResult, error) {
	return f.results, nil
}

func newTestChecker(provider llm.Provider, opts Options) *Checker {
	retrier := worker.NewRetrier(0, time.Millisecond, time.Millisecond)
	generator := questions.NewGenerator(provider, nil, retrier, 3)
	web := &fixedWebSearcher{results: []search.WebResult{
		{URL: "https://example.com/paris", Content: "The Eiffel Tower is in Paris"},
	}}
	gatherer := evidence.NewGatherer(web, nil, 5, 3)
	verifier := verify.NewVerifier(provider, nil, retrier, 1024, false)
	return NewChecker(generator, gatherer, verifier, opts)
}

func TestCheckContentEndToEnd(t *testing.T) {
	provider := &scriptedProvider{
		questions: "Is the Eiffel Tower located in Berlin?",
		verifications: map[string]string{
			"Is the Eiffel Tower located in Berlin?": `1. Verification Status: False
2. Confidence Score: 0.9
5. Reasoning: Evidence places the tower in Paris, not Berlin.`,
		},
	}
	checker := newTestChecker(provider, Options{})

	result, err := checker.CheckContent(context.Background(), "The Eiffel Tower is located in Berlin.")
	if err != nil {
		t.Fatalf("CheckContent() error = %v", err)
	}

	if result.Judgment != model.VerdictFake {
		t.Errorf("Judgment = %q, want %q", result.Judgment, model.VerdictFake)
	}
	if len(result.InitialQuestions) != 1 {
		t.Fatalf("InitialQuestions = %d, want 1", len(result.InitialQuestions))
	}
	if len(result.FactChecks) != 1 {
		t.Fatalf("FactChecks = %d, want 1", len(result.FactChecks))
	}

	analysis := result.FactChecks[0].Analysis
	if analysis.Status != model.StatusFalse {
		t.Errorf("analysis Status = %q, want %q", analysis.Status, model.StatusFalse)
	}
	if analysis.Confidence < 0.7 {
		t.Errorf("analysis Confidence = %v, want >= 0.7", analysis.Confidence)
	}
	if result.Metadata.ConfidenceScores.Judge < 0.5 {
		t.Errorf("judge confidence = %v, want >= 0.5", result.Metadata.ConfidenceScores.Judge)
	}
}

func TestCheckContentInsufficientContext(t *testing.T) {
	provider := &scriptedProvider{questions: "not enough context"}
	checker := newTestChecker(provider, Options{})

	result, err := checker.CheckContent(context.Background(), "lovely weather today")
	if err != nil {
		t.Fatalf("CheckContent() error = %v", err)
	}

	want := model.InsufficientContextResult()
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("CheckContent() mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckContentGenerationFailure(t *testing.T) {
	provider := &scriptedProvider{generateErr: errors.New("model unavailable")}
	checker := newTestChecker(provider, Options{})

	result, err := checker.CheckContent(context.Background(), "content")
	if err != nil {
		t.Fatalf("CheckContent() error = %v (failures must become results)", err)
	}

	if result.Judgment != model.VerdictError {
		t.Errorf("Judgment = %q, want %q", result.Judgment, model.VerdictError)
	}
	if result.JudgmentReason == "" {
		t.Error("JudgmentReason is empty")
	}
}

func TestCheckContentPerQuestionFailureDegrades(t *testing.T) {
	provider := &scriptedProvider{
		questions: "First question?\nSecond question?",
		verificationFn: func(prompt string) (string, error) {
			if strings.Contains(prompt, "First question?") {
				return "", errors.New("model unavailable")
			}
			return "1. Verification Status: True\n2. Confidence Score: 0.9", nil
		},
	}
	checker := newTestChecker(provider, Options{})

	result, err := checker.CheckContent(context.Background(), "content")
	if err != nil {
		t.Fatalf("CheckContent() error = %v", err)
	}

	if len(result.FactChecks) != 2 {
		t.Fatalf("FactChecks = %d, want 2 (failed question must not abort)", len(result.FactChecks))
	}
	if result.FactChecks[0].Analysis.Status != model.StatusError {
		t.Errorf("FactChecks[0] Status = %q, want %q", result.FactChecks[0].Analysis.Status, model.StatusError)
	}
	if result.FactChecks[1].Analysis.Status != model.StatusVerified {
		t.Errorf("FactChecks[1] Status = %q, want %q", result.FactChecks[1].Analysis.Status, model.StatusVerified)
	}
}

func TestCheckContentPreservesQuestionOrder(t *testing.T) {
	provider := &scriptedProvider{
		questions: "Question alpha?\nQuestion beta?\nQuestion gamma?",
		verificationFn: func(prompt string) (string, error) {
			switch {
			case strings.Contains(prompt, "Question alpha?"):
				return "Verification Status: True\nReasoning: alpha answer", nil
			case strings.Contains(prompt, "Question beta?"):
				return "Verification Status: True\nReasoning: beta answer", nil
			default:
				return "Verification Status: True\nReasoning: gamma answer", nil
			}
		},
	}
	checker := newTestChecker(provider, Options{QuestionWorkers: 3})

	result, err := checker.CheckContent(context.Background(), "content")
	if err != nil {
		t.Fatalf("CheckContent() error = %v", err)
	}

	wantQuestions := []string{"Question alpha?", "Question beta?", "Question gamma?"}
	if diff := cmp.Diff(wantQuestions, result.InitialQuestions); diff != "" {
		t.Errorf("InitialQuestions mismatch (-want +got):\n%s", diff)
	}

	wantReasonings := []string{"alpha answer", "beta answer", "gamma answer"}
	for i, want := range wantReasonings {
		if got := result.FactChecks[i].Analysis.Reasoning; got != want {
			t.Errorf("FactChecks[%d] Reasoning = %q, want %q", i, got, want)
		}
	}
}

func TestCheckContentVerboseOutput(t *testing.T) {
	provider := &scriptedProvider{
		questions: "One question?",
		verifications: map[string]string{
			"One question?": "Verification Status: True\nConfidence Score: 0.8",
		},
	}

	var buf strings.Builder
	checker := newTestChecker(provider, Options{Verbose: true, VerboseWriter: &buf})

	if _, err := checker.CheckContent(context.Background(), "content"); err != nil {
		t.Fatalf("CheckContent() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Generated 1 question(s)") {
		t.Errorf("verbose output missing question count: %q", out)
	}
	if !strings.Contains(out, "Judgment:") {
		t.Errorf("verbose output missing judgment line: %q", out)
	}
}
