package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"verilens/internal/cache"
	"verilens/internal/extract"
	"verilens/internal/model"
	"verilens/internal/util"
)

// Fetcher resolves a URL to its readable page text so a link can be checked
// like pasted content. Fetches honor robots.txt and are cached.
type Fetcher struct {
	httpClient   *http.Client
	robots       *util.RobotsChecker
	cache        cache.Cache
	cacheTTL     time.Duration
	userAgent    string
	maxBodyBytes int64
}

// NewFetcher creates a page fetcher. The cache may be nil to disable
// caching.
func NewFetcher(cfg model.HTTPConfig, c cache.Cache, cacheTTL time.Duration) *Fetcher {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 2 << 20
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: util.NewTransport(cfg),
		},
		robots:       util.NewRobotsChecker(cfg),
		cache:        c,
		cacheTTL:     cacheTTL,
		userAgent:    cfg.UserAgent,
		maxBodyBytes: maxBody,
	}
}

// IsURL reports whether the input looks like a fetchable URL rather than
// pasted content
func IsURL(input string) bool {
	input = strings.TrimSpace(input)
	if strings.ContainsAny(input, " \t\n") {
		return false
	}
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// Resolve returns the content to assess: page text when the input is a URL,
// the input itself otherwise
func (f *Fetcher) Resolve(ctx context.Context, input string) (string, error) {
	if !IsURL(input) {
		return input, nil
	}
	return f.Fetch(ctx, strings.TrimSpace(input))
}

// Fetch downloads a page and extracts its readable text. Disallowed by
// robots.txt is an error, not a silent skip.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	key := cache.Key("page", pageURL)
	if f.cache != nil {
		if data, found := f.cache.Get(key); found {
			return string(data), nil
		}
	}

	allowed, crawlDelay, err := f.robots.CanFetch(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return "", fmt.Errorf("fetching %s disallowed by robots.txt", pageURL)
	}
	if crawlDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(crawlDelay):
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, f.maxBodyBytes)
	text, err := extract.Text(body)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no readable text at %s", pageURL)
	}

	if f.cache != nil {
		_ = f.cache.Set(key, []byte(text), f.cacheTTL)
	}
	return text, nil
}
