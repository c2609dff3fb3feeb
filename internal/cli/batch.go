package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"verilens/internal/model"
	"verilens/internal/pipeline"
	"verilens/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Assess multiple content items from a file in parallel",
	Long: `Batch assesses multiple content items concurrently:
- Read items from the input file (one per line; # lines are comments)
- Each line is either content text or a URL to fetch
- Items are checked in parallel with a configurable worker count
- One JSON result file is written per item, numbered in input order

Example:
  verilens batch claims.txt
  verilens batch claims.txt --concurrency 4 --output-dir ./results
  verilens batch claims.txt --llm-provider ollama --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Batch flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./verilens-results", "output directory for results")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Shared flags
	batchCmd.Flags().StringVar(&userAgent, "ua", "Verilens/0.1 (+https://github.com/verilens/verilens)", "HTTP User-Agent")
	batchCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read when fetching a URL")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh searches)")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")
	batchCmd.Flags().IntVar(&numQuestions, "questions", 3, "verification questions per item")
	batchCmd.Flags().IntVar(&questionWorkers, "question-workers", 1, "concurrent question checks per item")
	batchCmd.Flags().BoolVar(&evaluateSources, "evaluate-sources", false, "request per-source YES/NO verdicts from the model")
}

// batchChecker adapts the pipeline plus URL resolution to the batch worker
type batchChecker struct {
	checker *pipeline.Checker
	fetcher *pipeline.Fetcher
}

func (b *batchChecker) CheckContent(ctx context.Context, item string) (*model.CheckResult, error) {
	content, err := b.fetcher.Resolve(ctx, item)
	if err != nil {
		return nil, err
	}
	return b.checker.CheckContent(ctx, content)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := buildConfig()
	cfg.Concurrency.BatchWorkers = concurrency

	if err := resolveAPIKeys(cfg); err != nil {
		return err
	}

	checker, fetcher, err := buildChecker(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Input file: %s\n", file)
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "Output dir: %s\n\n", outputDir)

	processor := worker.NewBatchProcessor(&batchChecker{checker: checker, fetcher: fetcher}, concurrency)

	outcomes, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.Pretty)
	successCount := 0
	failureCount := 0

	for _, outcome := range outcomes {
		if outcome.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "item %d failed: %v\n", outcome.Index+1, outcome.Error)
			continue
		}

		data, err := renderer.JSON(outcome.Result)
		if err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "item %d render failed: %v\n", outcome.Index+1, err)
			continue
		}

		path := filepath.Join(outputDir, fmt.Sprintf("result-%03d.json", outcome.Index+1))
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "item %d write failed: %v\n", outcome.Index+1, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "item %d: %s (confidence %.2f)\n",
			outcome.Index+1, outcome.Result.Judgment, outcome.Result.Metadata.ConfidenceScores.Judge)
	}

	fmt.Fprintf(os.Stderr, "\nTotal: %d, success: %d, failures: %d\n", len(outcomes), successCount, failureCount)
	return nil
}
