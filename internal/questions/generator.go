// Package questions generates verification questions for content using the
// language model.
package questions

import (
	"context"
	"fmt"
	"strings"

	"verilens/internal/llm"
	"verilens/internal/model"
	"verilens/internal/worker"
)

const llmService = "llm"

// insufficientContextSentinel is the exact phrase the model is told to
// return for content with no checkable claims
const insufficientContextSentinel = "not enough context"

// ErrInsufficientContext signals that the content has no factual claims
// worth verifying. Callers bypass verification and judgment entirely.
var ErrInsufficientContext = fmt.Errorf("content has no checkable claims")

// Generator produces verification questions for a piece of content
type Generator struct {
	provider     llm.Provider
	limiter      *worker.Limiter
	retrier      *worker.Retrier
	numQuestions int
}

// NewGenerator creates a question generator
func NewGenerator(provider llm.Provider, limiter *worker.Limiter, retrier *worker.Retrier, numQuestions int) *Generator {
	if numQuestions <= 0 {
		numQuestions = 3
	}
	return &Generator{
		provider:     provider,
		limiter:      limiter,
		retrier:      retrier,
		numQuestions: numQuestions,
	}
}

// Generate asks the model for verification questions targeting the content's
// main factual claims. Returns ErrInsufficientContext when the model signals
// the content is unverifiable; any other failure is returned as-is.
func (g *Generator) Generate(ctx context.Context, content string) ([]model.Question, error) {
	prompt := buildPrompt(content, g.numQuestions)

	var text string
	err := g.retrier.Do(ctx, func() error {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx, llmService); err != nil {
				return err
			}
		}

		resp, err := g.provider.Complete(ctx, llm.CompletionRequest{Prompt: prompt})
		if err != nil {
			return err
		}
		text = resp.Text
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	if strings.Contains(strings.ToLower(text), insufficientContextSentinel) {
		return nil, ErrInsufficientContext
	}

	questions := parseQuestions(text)
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions in model response")
	}
	return questions, nil
}

func buildPrompt(content string, numQuestions int) string {
	var b strings.Builder
	b.WriteString("Critically evaluate the following content:\n\n")
	b.WriteString(content)
	b.WriteString("\n\nDetermine if it contains factual claims suitable for investigation or if it is subjective, unverifiable, nonsensical, or too vague.\n")
	b.WriteString("If unsuitable for fact-checking, return ONLY the exact text: 'not enough context'.\n")
	fmt.Fprintf(&b, "Otherwise, generate %d specific, concise questions targeting the main factual claims. ", numQuestions)
	b.WriteString("Return ONLY the questions, each on a new line, without any numbering or bullet points.")
	return b.String()
}

// parseQuestions splits the response into one question per non-empty line,
// stripping any list markers the model added anyway
func parseQuestions(text string) []model.Question {
	var questions []model.Question
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789.) ")
		if line == "" {
			continue
		}
		questions = append(questions, model.Question{Text: line})
	}
	return questions
}
