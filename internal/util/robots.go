package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"verilens/internal/model"
)

// RobotsChecker gates page fetches on each host's robots.txt. Parsed robots
// data is cached per host for the life of the checker.
type RobotsChecker struct {
	httpClient *http.Client
	fullAgent  string
	agentToken string

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a checker that identifies itself with the
// configured User-Agent. Robots groups are matched against the product token
// ("Verilens"), not the full UA string.
func NewRobotsChecker(cfg model.HTTPConfig) *RobotsChecker {
	return &RobotsChecker{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: NewTransport(cfg),
		},
		fullAgent:  cfg.UserAgent,
		agentToken: agentToken(cfg.UserAgent),
		hosts:      make(map[string]*robotstxt.RobotsData),
	}
}

// CanFetch reports whether pageURL may be fetched and the crawl delay the
// host requests. An unreachable or unparsable robots.txt allows the fetch.
func (r *RobotsChecker) CanFetch(ctx context.Context, pageURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	data := r.robotsFor(ctx, parsed)
	if data == nil {
		return true, 0, nil
	}

	group := data.FindGroup(r.agentToken)
	if group == nil {
		return true, 0, nil
	}
	return group.Test(parsed.Path), group.CrawlDelay, nil
}

// robotsFor returns cached robots data for the URL's host, fetching it on
// first use. A failed fetch caches a nil (permissive) entry so a broken host
// is not re-probed for every page.
func (r *RobotsChecker) robotsFor(ctx context.Context, page *url.URL) *robotstxt.RobotsData {
	host := page.Host

	r.mu.Lock()
	data, cached := r.hosts[host]
	r.mu.Unlock()
	if cached {
		return data
	}

	data = r.fetchRobots(ctx, page.Scheme, host)

	r.mu.Lock()
	r.hosts[host] = data
	r.mu.Unlock()
	return data
}

func (r *RobotsChecker) fetchRobots(ctx context.Context, scheme, host string) *robotstxt.RobotsData {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.fullAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	// FromResponse maps 404 to allow-all and 5xx to disallow-all
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data
}

// agentToken reduces a full User-Agent ("Verilens/0.1 (+https://...)") to
// the product token robots.txt groups are written against
func agentToken(userAgent string) string {
	fields := strings.Fields(userAgent)
	if len(fields) == 0 {
		return userAgent
	}
	token, _, _ := strings.Cut(fields[0], "/")
	return token
}
