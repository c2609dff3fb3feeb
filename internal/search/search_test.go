package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"verilens/internal/worker"
)

func newTestRetrier() *worker.Retrier {
	return worker.NewRetrier(0, time.Millisecond, time.Millisecond)
}

func TestTavilySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "moon landing" {
			t.Errorf("Query = %q, want %q", req.Query, "moon landing")
		}
		if req.SearchDepth != "advanced" {
			t.Errorf("SearchDepth = %q, want %q", req.SearchDepth, "advanced")
		}
		if req.MaxResults != 5 {
			t.Errorf("MaxResults = %d, want 5", req.MaxResults)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"url": "https://example.com/a", "title": "A", "content": "first hit", "score": 0.9},
				{"url": "https://example.com/b", "title": "B", "content": "second hit", "score": 0.7},
				{"url": "", "title": "dropped", "content": "no url"},
			},
		})
	}))
	defer server.Close()

	client, err := NewTavilyClient("test-key", 5*time.Second, nil, newTestRetrier(), WithTavilyBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewTavilyClient() error = %v", err)
	}

	results, err := client.Search(context.Background(), "moon landing", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := []WebResult{
		{URL: "https://example.com/a", Content: "first hit"},
		{URL: "https://example.com/b", Content: "second hit"},
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("Search() mismatch (-want +got):\n%s", diff)
	}
}

func TestTavilySearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	client, err := NewTavilyClient("bad-key", 5*time.Second, nil, newTestRetrier(), WithTavilyBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewTavilyClient() error = %v", err)
	}

	if _, err := client.Search(context.Background(), "anything", 5); err == nil {
		t.Error("Search() expected error for 401 response")
	}
}

func TestNewTavilyClientRequiresKey(t *testing.T) {
	if _, err := NewTavilyClient("", time.Second, nil, newTestRetrier()); err == nil {
		t.Error("NewTavilyClient() expected error for empty API key")
	}
}

func TestWikipediaSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "query" || q.Get("list") != "search" {
			t.Errorf("unexpected query params: %v", q)
		}
		if q.Get("srsearch") != "Apollo 11" {
			t.Errorf("srsearch = %q, want %q", q.Get("srsearch"), "Apollo 11")
		}
		if q.Get("srlimit") != "3" {
			t.Errorf("srlimit = %q, want %q", q.Get("srlimit"), "3")
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"query": map[string]any{
				"search": []map[string]any{
					{
						"title":   "Apollo 11",
						"snippet": `<span class="searchmatch">Apollo</span> <span class="searchmatch">11</span> was the first crewed landing`,
						"pageid":  663,
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewWikipediaClient("test-agent", 5*time.Second, nil, newTestRetrier(), WithWikipediaBaseURL(server.URL))

	results, err := client.Search(context.Background(), "Apollo 11", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := []WikiResult{
		{Title: "Apollo 11", Snippet: "Apollo 11 was the first crewed landing", PageID: 663},
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("Search() mismatch (-want +got):\n%s", diff)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		want    string
	}{
		{
			name:    "searchmatch spans",
			snippet: `The <span class="searchmatch">Eiffel</span> Tower is in Paris`,
			want:    "The Eiffel Tower is in Paris",
		},
		{
			name:    "plain text untouched",
			snippet: "no markup here",
			want:    "no markup here",
		},
		{
			name:    "nested tags",
			snippet: "<b>bold <i>and italic</i></b> text",
			want:    "bold and italic text",
		},
		{
			name:    "empty",
			snippet: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.snippet); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.snippet, got, tt.want)
			}
		})
	}
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.entries[key]
	return data, ok
}

func (f *fakeCache) Set(key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	f.sets++
	return nil
}

func (f *fakeCache) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fakeCache) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[string][]byte)
	return nil
}

type countingWebSearcher struct {
	calls   int
	results []WebResult
	err     error
}

func (c *countingWebSearcher) Search(ctx context.Context, query string, maxResults int) ([]WebResult, error) {
	c.calls++
	return c.results, c.err
}

func TestCachedWebSearcher(t *testing.T) {
	inner := &countingWebSearcher{
		results: []WebResult{{URL: "https://example.com", Content: "hit"}},
	}
	cached := NewCachedWebSearcher(inner, newFakeCache(), time.Minute)

	first, err := cached.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	second, err := cached.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Search() second call error = %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1 (second lookup should hit cache)", inner.calls)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached result mismatch (-first +second):\n%s", diff)
	}
}

func TestCachedWebSearcherDistinctLimits(t *testing.T) {
	inner := &countingWebSearcher{
		results: []WebResult{{URL: "https://example.com", Content: "hit"}},
	}
	cached := NewCachedWebSearcher(inner, newFakeCache(), time.Minute)

	if _, err := cached.Search(context.Background(), "query", 3); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if _, err := cached.Search(context.Background(), "query", 5); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (different limits are different keys)", inner.calls)
	}
}

func TestCachedWebSearcherSkipsCacheOnError(t *testing.T) {
	inner := &countingWebSearcher{err: errors.New("provider down")}
	fc := newFakeCache()
	cached := NewCachedWebSearcher(inner, fc, time.Minute)

	if _, err := cached.Search(context.Background(), "query", 5); err == nil {
		t.Fatal("Search() expected error from inner searcher")
	}
	if fc.sets != 0 {
		t.Errorf("cache sets = %d, want 0 (errors must not be cached)", fc.sets)
	}
}
