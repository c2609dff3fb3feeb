// Package pipeline orchestrates the misinformation assessment: question
// generation, per-question evidence gathering and verification, and the
// final aggregated judgment.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"verilens/internal/evidence"
	"verilens/internal/judge"
	"verilens/internal/model"
	"verilens/internal/questions"
	"verilens/internal/verify"
)

// Options configures pipeline execution
type Options struct {
	// QuestionWorkers bounds how many questions are verified concurrently.
	// 1 means sequential, the safer default against rate limits.
	QuestionWorkers int

	// Verbose enables progress output to VerboseWriter
	Verbose       bool
	VerboseWriter io.Writer
}

// Checker runs the full assessment pipeline for one content item
type Checker struct {
	generator *questions.Generator
	gatherer  *evidence.Gatherer
	verifier  *verify.Verifier
	opts      Options
}

// NewChecker creates a pipeline checker
func NewChecker(generator *questions.Generator, gatherer *evidence.Gatherer, verifier *verify.Verifier, opts Options) *Checker {
	if opts.QuestionWorkers <= 0 {
		opts.QuestionWorkers = 1
	}
	return &Checker{
		generator: generator,
		gatherer:  gatherer,
		verifier:  verifier,
		opts:      opts,
	}
}

// CheckContent assesses one content item end to end. The result is always
// well-formed: generation failures and insufficient context become
// distinguished terminal results, and per-question failures become
// error-status analyses that degrade the judgment instead of aborting it.
func (c *Checker) CheckContent(ctx context.Context, content string) (*model.CheckResult, error) {
	c.logf("Generating verification questions...")

	qs, err := c.generator.Generate(ctx, content)
	if err != nil {
		if errors.Is(err, questions.ErrInsufficientContext) {
			c.logf("Content has no checkable claims")
			return model.InsufficientContextResult(), nil
		}
		c.logf("Question generation failed: %v", err)
		return model.ErrorResult(fmt.Sprintf("Failed to generate questions: %v", err)), nil
	}

	c.logf("Generated %d question(s)", len(qs))

	analyses := c.analyzeQuestions(ctx, content, qs)

	judgment := judge.Judge(analyses)
	c.logf("Judgment: %s (confidence %.2f)", judgment.Verdict, judgment.Confidence)

	return assembleResult(qs, analyses, judgment), nil
}

// analyzeQuestions runs gather+verify for each question, preserving question
// order in the returned analyses regardless of execution order
func (c *Checker) analyzeQuestions(ctx context.Context, content string, qs []model.Question) []*model.VerificationAnalysis {
	analyses := make([]*model.VerificationAnalysis, len(qs))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(c.opts.QuestionWorkers)

	for i, q := range qs {
		i, q := i, q
		group.Go(func() error {
			c.logf("Checking question %d/%d: %s", i+1, len(qs), q.Text)
			bundle := c.gatherer.Gather(gctx, q.Text)
			c.logf("Question %d: %d evidence item(s)", i+1, len(bundle.Items))
			analyses[i] = c.verifier.Analyze(gctx, content, q, bundle)
			return nil
		})
	}
	_ = group.Wait()

	// A cancelled worker slot leaves a nil analysis; fold it into the
	// pipeline's error semantics
	for i, analysis := range analyses {
		if analysis == nil {
			analyses[i] = model.NewErrorAnalysis("Verification did not complete for this question.")
		}
	}
	return analyses
}

// assembleResult builds the outward result record from the pipeline stages
func assembleResult(qs []model.Question, analyses []*model.VerificationAnalysis, judgment model.Judgment) *model.CheckResult {
	questionTexts := make([]string, len(qs))
	factChecks := make([]model.FactCheck, len(qs))
	var confidenceSum float64

	for i, q := range qs {
		questionTexts[i] = q.Text
		factChecks[i] = model.FactCheck{
			Question: q,
			Analysis: analyses[i],
		}
		confidenceSum += analyses[i].Confidence
	}

	factCheckConfidence := 0.0
	if len(analyses) > 0 {
		factCheckConfidence = confidenceSum / float64(len(analyses))
	}

	return &model.CheckResult{
		InitialQuestions: questionTexts,
		FactChecks:       factChecks,
		Judgment:         judgment.Verdict,
		JudgmentReason:   judgment.Reason,
		Metadata: model.ResultMetadata{
			ConfidenceScores: model.ConfidenceScores{
				QuestionGenerator: 0.8,
				FactChecking:      factCheckConfidence,
				Judge:             judgment.Confidence,
			},
		},
	}
}

func (c *Checker) logf(format string, args ...any) {
	if !c.opts.Verbose || c.opts.VerboseWriter == nil {
		return
	}
	fmt.Fprintf(c.opts.VerboseWriter, format+"\n", args...)
}
