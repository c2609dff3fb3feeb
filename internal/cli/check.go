package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"verilens/internal/model"
	"verilens/internal/pipeline"
)

var (
	outJSON         string
	asText          bool
	timeout         time.Duration
	userAgent       string
	maxBytes        int64
	noCache         bool
	llmProvider     string
	llmModel        string
	numQuestions    int
	questionWorkers int
	evaluateSources bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <content or url>",
	Short: "Assess one piece of content for misinformation",
	Long: `Check runs the full assessment pipeline on one content item:
- Generate targeted verification questions
- Gather evidence per question from web and encyclopedia search
- Ask the language model to judge each question against the evidence
- Aggregate the per-question verdicts into one judgment (REAL, FAKE,
  MISLEADING, or UNCERTAIN) with a confidence score

The argument is either the content text itself or a URL; URLs are fetched
(respecting robots.txt) and their readable text is assessed.

Example:
  verilens check "The Eiffel Tower is located in Berlin."
  verilens check https://example.com/article --json result.json
  verilens check "..." --llm-provider anthropic --questions 5`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Output flags
	checkCmd.Flags().StringVar(&outJSON, "json", "", "write JSON result to this path instead of stdout")
	checkCmd.Flags().BoolVar(&asText, "text", false, "print a human-readable summary instead of JSON")

	// HTTP flags
	checkCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall check timeout")
	checkCmd.Flags().StringVar(&userAgent, "ua", "Verilens/0.1 (+https://github.com/verilens/verilens)", "HTTP User-Agent")
	checkCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read when fetching a URL")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh searches)")

	// LLM flags
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")

	// Pipeline flags
	checkCmd.Flags().IntVar(&numQuestions, "questions", 3, "verification questions to generate")
	checkCmd.Flags().IntVar(&questionWorkers, "question-workers", 1, "concurrent question checks (1 = sequential)")
	checkCmd.Flags().BoolVar(&evaluateSources, "evaluate-sources", false, "request per-source YES/NO verdicts from the model")
}

func runCheck(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := buildConfig()

	if err := resolveAPIKeys(cfg); err != nil {
		return err
	}

	checker, fetcher, err := buildChecker(cfg)
	if err != nil {
		return err
	}

	content, err := fetcher.Resolve(ctx, input)
	if err != nil {
		return fmt.Errorf("resolve content: %w", err)
	}

	if verbose && content != input {
		fmt.Fprintf(os.Stderr, "Fetched %d characters of page text\n", len(content))
	}

	result, err := checker.CheckContent(ctx, content)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	return writeResult(result, cfg)
}

// buildConfig merges defaults with the flag values shared by check and batch
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 30 * time.Second
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.Cache.Enabled = !noCache
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	cfg.LLM.NumQuestions = numQuestions
	cfg.Concurrency.QuestionWorkers = questionWorkers
	cfg.Output.Verbose = verbose
	return cfg
}

// writeResult renders the check result per the output flags
func writeResult(result *model.CheckResult, cfg *model.Config) error {
	renderer := pipeline.NewRenderer(cfg.Output.Pretty)

	if asText {
		fmt.Print(renderer.Text(result))
		return nil
	}

	data, err := renderer.JSON(result)
	if err != nil {
		return fmt.Errorf("render result: %w", err)
	}

	if outJSON != "" {
		if err := os.WriteFile(outJSON, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", outJSON)
		}
		return nil
	}

	fmt.Println(string(data))
	return nil
}
