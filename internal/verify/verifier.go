package verify

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"verilens/internal/llm"
	"verilens/internal/model"
	"verilens/internal/worker"
)

const llmService = "llm"

// maxExcerptLen bounds each evidence excerpt rendered into the prompt so
// prompt size stays proportional to the result count, not page sizes
const maxExcerptLen = 500

// Verifier asks the language model to judge one question against its
// gathered evidence
type Verifier struct {
	provider        llm.Provider
	limiter         *worker.Limiter
	retrier         *worker.Retrier
	maxTokens       int
	evaluateSources bool
}

// NewVerifier creates a claim verifier. When evaluateSources is set the
// prompt requests an extra per-source YES/NO section, which feeds the
// vote-ratio confidence fallback.
func NewVerifier(provider llm.Provider, limiter *worker.Limiter, retrier *worker.Retrier, maxTokens int, evaluateSources bool) *Verifier {
	return &Verifier{
		provider:        provider,
		limiter:         limiter,
		retrier:         retrier,
		maxTokens:       maxTokens,
		evaluateSources: evaluateSources,
	}
}

// Verify builds the verification prompt, invokes the model once, and
// returns its raw text. The caller synthesizes an error analysis on failure;
// raw errors never enter the pipeline.
func (v *Verifier) Verify(ctx context.Context, content string, question model.Question, bundle *model.EvidenceBundle) (string, error) {
	prompt := buildPrompt(content, question, bundle, v.evaluateSources)

	var text string
	err := v.retrier.Do(ctx, func() error {
		if v.limiter != nil {
			if err := v.limiter.Wait(ctx, llmService); err != nil {
				return err
			}
		}

		resp, err := v.provider.Complete(ctx, llm.CompletionRequest{
			Prompt:    prompt,
			MaxTokens: v.maxTokens,
		})
		if err != nil {
			return err
		}
		text = resp.Text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("verify question %q: %w", question.Text, err)
	}
	return text, nil
}

// Analyze runs Verify then Parse and attaches the source list. A model
// failure degrades to an error-status analysis for this question only.
func (v *Verifier) Analyze(ctx context.Context, content string, question model.Question, bundle *model.EvidenceBundle) *model.VerificationAnalysis {
	raw, err := v.Verify(ctx, content, question, bundle)
	if err != nil {
		analysis := model.NewErrorAnalysis(fmt.Sprintf("Analysis failed: %v", err))
		analysis.Sources = AssembleSources(bundle)
		return analysis
	}

	analysis := Parse(raw, question.Text)
	analysis.Sources = AssembleSources(bundle)
	return analysis
}

// buildPrompt renders the deterministic verification prompt: content, the
// question, web evidence first, then encyclopedia evidence, then the
// numbered section instructions
func buildPrompt(content string, question model.Question, bundle *model.EvidenceBundle, evaluateSources bool) string {
	var b strings.Builder

	b.WriteString("Please perform a fact-checking assessment based only on the provided context and evidence.\n\n")
	b.WriteString("Original Content:\n")
	b.WriteString(content)
	b.WriteString("\n\nQuestion to Verify:\n")
	b.WriteString(question.Text)

	b.WriteString("\n\nWeb Search Evidence:\n")
	webItems := bundle.WebItems()
	if len(webItems) == 0 {
		b.WriteString("No web results found.\n")
	} else {
		for _, item := range webItems {
			fmt.Fprintf(&b, "- %s (Source: %s)\n", truncate(item.Excerpt, maxExcerptLen), item.Locator)
		}
	}

	b.WriteString("\nEncyclopedia Evidence:\n")
	wikiItems := bundle.EncyclopediaItems()
	if len(wikiItems) == 0 {
		b.WriteString("No encyclopedia results found.\n")
	} else {
		for _, item := range wikiItems {
			fmt.Fprintf(&b, "- %s: %s\n", item.Locator, truncate(item.Excerpt, maxExcerptLen))
		}
	}

	b.WriteString("\nInstructions:\n")
	b.WriteString("Analyze the evidence gathered above to answer the question in relation to the original content.\n")
	b.WriteString("Provide:\n")
	b.WriteString("1. Verification status (e.g., True, False, Partially True, Unclear due to conflicting evidence, Cannot Verify)\n")
	b.WriteString("2. Confidence score (0.0 to 1.0) representing your certainty in the verification status based only on the provided evidence.\n")
	b.WriteString("3. Supporting evidence (list specific points from the evidence that support the status)\n")
	b.WriteString("4. Contradicting evidence (list specific points from the evidence that contradict the status)\n")
	b.WriteString("5. Reasoning (explain your assessment step by step, referencing the evidence)\n")
	b.WriteString("6. Evidence gaps (mention any missing information needed for a more certain assessment)\n")
	b.WriteString("7. Recommendations (suggest further checks if needed)\n")
	if evaluateSources {
		b.WriteString("8. Source evaluation (for each source above, state YES if it supports the claim or NO if it contradicts it, with a brief reason)\n")
	}
	b.WriteString("\nRespond only with the structured analysis, using the headings above.")

	return b.String()
}

// AssembleSources builds the deduplicated source list for an analysis: web
// locators in evidence order, a single "Wikipedia" marker when encyclopedia
// evidence was present, and a placeholder when nothing was found.
func AssembleSources(bundle *model.EvidenceBundle) []string {
	sources := []string{}
	seen := make(map[string]bool)

	if bundle != nil {
		for _, item := range bundle.WebItems() {
			if item.Locator == "" || seen[item.Locator] {
				continue
			}
			seen[item.Locator] = true
			sources = append(sources, item.Locator)
		}
		if len(bundle.EncyclopediaItems()) > 0 {
			sources = append(sources, "Wikipedia")
		}
	}

	if len(sources) == 0 {
		sources = append(sources, "LLM analysis based on content")
	}
	return sources
}

// truncate bounds s to limit bytes, backing the cut up to a rune boundary
// so the prompt never carries a split character
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
