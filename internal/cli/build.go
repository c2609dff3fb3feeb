package cli

import (
	"fmt"
	"os"

	"verilens/internal/cache"
	"verilens/internal/evidence"
	"verilens/internal/llm"
	"verilens/internal/model"
	"verilens/internal/pipeline"
	"verilens/internal/questions"
	"verilens/internal/search"
	"verilens/internal/verify"
	"verilens/internal/worker"
)

// resolveAPIKeys fills in credentials from the environment following the
// usual variable names
func resolveAPIKeys(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	if cfg.Search.TavilyAPIKey == "" {
		cfg.Search.TavilyAPIKey = os.Getenv("TAVILY_API_KEY")
	}
	return nil
}

// buildCache creates the layered search/page cache, or nil when disabled
func buildCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cache.NewMemoryCache(cfg.Cache.MemoryTTL)
		}
		dir = home + "/.verilens/cache"
	}
	return cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
}

// buildChecker assembles the full assessment pipeline from configuration
func buildChecker(cfg *model.Config) (*pipeline.Checker, *pipeline.Fetcher, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, nil, fmt.Errorf("create LLM provider: %w", err)
	}
	if provider == nil {
		return nil, nil, fmt.Errorf("no LLM provider configured (use --llm-provider or config)")
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	retrier := worker.NewRetrier(cfg.RateLimiting.MaxRetries, cfg.RateLimiting.BaseDelay, cfg.RateLimiting.MaxBackoff)
	resultCache := buildCache(cfg)

	var web search.WebSearcher
	if cfg.Search.TavilyAPIKey != "" {
		tavily, err := search.NewTavilyClient(
			cfg.Search.TavilyAPIKey, cfg.HTTP.Timeout, limiter, retrier,
			search.WithTavilyProxy(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("create web searcher: %w", err)
		}
		web = tavily
		if resultCache != nil {
			web = search.NewCachedWebSearcher(web, resultCache, cfg.Cache.DiskTTL)
		}
	} else if verbose {
		fmt.Fprintln(os.Stderr, "TAVILY_API_KEY not set, web search disabled")
	}

	var encyclopedia search.EncyclopediaSearcher = search.NewWikipediaClient(
		cfg.HTTP.UserAgent, cfg.HTTP.Timeout, limiter, retrier,
		search.WithWikipediaProxy(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
	)
	if resultCache != nil {
		encyclopedia = search.NewCachedEncyclopediaSearcher(encyclopedia, resultCache, cfg.Cache.DiskTTL)
	}

	generator := questions.NewGenerator(provider, limiter, retrier, cfg.LLM.NumQuestions)
	gatherer := evidence.NewGatherer(web, encyclopedia, cfg.Search.MaxWebResults, cfg.Search.MaxWikiResults)
	verifier := verify.NewVerifier(provider, limiter, retrier, cfg.LLM.MaxTokens, evaluateSources)

	checker := pipeline.NewChecker(generator, gatherer, verifier, pipeline.Options{
		QuestionWorkers: cfg.Concurrency.QuestionWorkers,
		Verbose:         cfg.Output.Verbose,
		VerboseWriter:   os.Stderr,
	})

	fetcher := pipeline.NewFetcher(cfg.HTTP, resultCache, cfg.Cache.DiskTTL)

	return checker, fetcher, nil
}
