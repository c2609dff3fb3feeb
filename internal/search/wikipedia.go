package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"verilens/internal/util"
	"verilens/internal/worker"
)

const wikipediaService = "wikipedia"

// WikipediaClient implements EncyclopediaSearcher against the MediaWiki
// search API
type WikipediaClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *worker.Limiter
	retrier    *worker.Retrier
}

// WikipediaOption configures the client
type WikipediaOption func(*WikipediaClient)

// WithWikipediaBaseURL overrides the API endpoint (used in tests)
func WithWikipediaBaseURL(baseURL string) WikipediaOption {
	return func(c *WikipediaClient) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithWikipediaProxy routes requests through the given proxies
func WithWikipediaProxy(httpProxy, httpsProxy, noProxy string) WikipediaOption {
	return func(c *WikipediaClient) {
		c.httpClient.Transport = &http.Transport{
			Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
		}
	}
}

// NewWikipediaClient creates a Wikipedia search client
func NewWikipediaClient(userAgent string, timeout time.Duration, limiter *worker.Limiter, retrier *worker.Retrier, opts ...WikipediaOption) *WikipediaClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &WikipediaClient{
		baseURL:   "https://en.wikipedia.org/w/api.php",
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
		retrier: retrier,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wikipediaResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			PageID  int    `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
}

// Search queries the MediaWiki search API and returns results with
// highlight markup stripped from snippets
func (c *WikipediaClient) Search(ctx context.Context, query string, maxResults int) ([]WikiResult, error) {
	if maxResults <= 0 {
		maxResults = 3
	}

	var results []WikiResult
	err := c.retrier.Do(ctx, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, wikipediaService); err != nil {
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

func (c *WikipediaClient) search(ctx context.Context, query string, maxResults int) ([]WikiResult, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(maxResults))
	params.Set("utf8", "1")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

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

	var resp wikipediaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	results := make([]WikiResult, 0, len(resp.Query.Search))
	for _, r := range resp.Query.Search {
		results = append(results, WikiResult{
			Title:   r.Title,
			Snippet: StripHTML(r.Snippet),
			PageID:  r.PageID,
		})
	}
	return results, nil
}

// StripHTML removes markup from a snippet, keeping only text content.
// MediaWiki wraps matched terms in searchmatch spans; only the words matter.
func StripHTML(snippet string) string {
	if !strings.Contains(snippet, "<") {
		return strings.TrimSpace(snippet)
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(snippet))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(tokenizer.Text())
		}
	}
	return strings.TrimSpace(b.String())
}
