// Package search provides the web and encyclopedia search collaborators
// used to gather evidence for verification questions.
package search

import "context"

// WebSearcher queries a ranked web-search provider
type WebSearcher interface {
	// Search returns up to maxResults hits in provider rank order
	Search(ctx context.Context, query string, maxResults int) ([]WebResult, error)
}

// WebResult is one web search hit
type WebResult struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// EncyclopediaSearcher queries an encyclopedia search provider
type EncyclopediaSearcher interface {
	// Search returns up to maxResults articles in provider rank order
	Search(ctx context.Context, query string, maxResults int) ([]WikiResult, error)
}

// WikiResult is one encyclopedia search hit
type WikiResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	PageID  int    `json:"pageid,omitempty"`
}
