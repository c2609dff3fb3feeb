package model

import "time"

// Config is the complete verilens configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Search       SearchConfig       `yaml:"search"`
	LLM          LLMConfig          `yaml:"llm"`
	Cache        CacheConfig        `yaml:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	Output       OutputConfig       `yaml:"output"`
}

// HTTPConfig controls outbound HTTP behavior (page fetches, search calls)
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty"`
	NoProxy      string        `yaml:"no_proxy,omitempty"`
}

// SearchConfig controls the web and encyclopedia search collaborators
type SearchConfig struct {
	TavilyAPIKey   string `yaml:"tavily_api_key,omitempty"`
	MaxWebResults  int    `yaml:"max_web_results"`  // top-N web hits per question
	MaxWikiResults int    `yaml:"max_wiki_results"` // top-N encyclopedia hits per question
}

// LLMConfig controls the language-model oracle
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, ollama
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`

	NumQuestions int `yaml:"num_questions"` // questions generated per content item
}

// CacheConfig controls search/page result caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	BatchWorkers    int `yaml:"batch_workers"`    // concurrent content items in batch mode
	QuestionWorkers int `yaml:"question_workers"` // concurrent question checks per item (1 = sequential)
}

// RateLimitingConfig paces calls to each external service
type RateLimitingConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size"`
	MaxRetries        int           `yaml:"max_retries"`
	BaseDelay         time.Duration `yaml:"base_delay"`
	MaxBackoff        time.Duration `yaml:"max_backoff"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
	Pretty  bool `yaml:"pretty"` // indent JSON output
}

// DefaultConfig returns the standard verilens defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Verilens/0.1 (+https://github.com/verilens/verilens)",
			MaxBodyBytes: 2_000_000,
		},
		Search: SearchConfig{
			MaxWebResults:  5,
			MaxWikiResults: 3,
		},
		LLM: LLMConfig{
			Provider:     "openai",
			Timeout:      60,
			MaxTokens:    1500,
			NumQuestions: 3,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers:    4,
			QuestionWorkers: 1,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
			MaxRetries:        3,
			BaseDelay:         time.Second,
			MaxBackoff:        30 * time.Second,
		},
		Output: OutputConfig{
			Pretty: true,
		},
	}
}
