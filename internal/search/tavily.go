package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"verilens/internal/util"
	"verilens/internal/worker"
)

const tavilyService = "tavily"

// TavilyClient implements WebSearcher against the Tavily search API
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *worker.Limiter
	retrier    *worker.Retrier
}

// TavilyOption configures the client
type TavilyOption func(*TavilyClient)

// WithTavilyBaseURL overrides the API endpoint (used in tests)
func WithTavilyBaseURL(baseURL string) TavilyOption {
	return func(c *TavilyClient) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTavilyProxy routes requests through the given proxies
func WithTavilyProxy(httpProxy, httpsProxy, noProxy string) TavilyOption {
	return func(c *TavilyClient) {
		c.httpClient.Transport = &http.Transport{
			Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
		}
	}
}

// NewTavilyClient creates a Tavily web search client. The limiter paces
// calls; the retrier waits out provider throttling.
func NewTavilyClient(apiKey string, timeout time.Duration, limiter *worker.Limiter, retrier *worker.Retrier, opts ...TavilyOption) (*TavilyClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Tavily API key is required")
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &TavilyClient{
		apiKey:  apiKey,
		baseURL: "https://api.tavily.com",
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
		retrier: retrier,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Tavily API structures
type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		URL     string  `json:"url"`
		Title   string  `json:"title"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search queries Tavily and returns results in provider rank order
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]WebResult, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	var results []WebResult
	err := c.retrier.Do(ctx, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, tavilyService); err != nil {
				return err
			}
		}

		resp, err := c.search(ctx, query, maxResults)
		if err != nil {
			return err
		}
		results = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (c *TavilyClient) search(ctx context.Context, query string, maxResults int) ([]WebResult, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:      c.apiKey,
		Query:       query,
		SearchDepth: "advanced",
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/search", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp tavilyResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	results := make([]WebResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, WebResult{
			URL:     r.URL,
			Content: r.Content,
		})
	}
	return results, nil
}
