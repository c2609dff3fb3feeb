// Package evidence gathers search evidence for verification questions.
package evidence

import (
	"context"

	"golang.org/x/sync/errgroup"

	"verilens/internal/model"
	"verilens/internal/search"
)

// Gatherer collects evidence for a question from web search and an
// encyclopedia in parallel. Either source failing degrades to an empty
// contribution rather than an error: verification must proceed on whatever
// evidence is available.
type Gatherer struct {
	web            search.WebSearcher
	encyclopedia   search.EncyclopediaSearcher
	maxWebResults  int
	maxWikiResults int
}

// NewGatherer creates an evidence gatherer. Either searcher may be nil,
// in which case that source contributes nothing.
func NewGatherer(web search.WebSearcher, encyclopedia search.EncyclopediaSearcher, maxWebResults, maxWikiResults int) *Gatherer {
	if maxWebResults <= 0 {
		maxWebResults = 5
	}
	if maxWikiResults <= 0 {
		maxWikiResults = 3
	}
	return &Gatherer{
		web:            web,
		encyclopedia:   encyclopedia,
		maxWebResults:  maxWebResults,
		maxWikiResults: maxWikiResults,
	}
}

// Gather queries both sources concurrently and returns a bundle with web
// results first in provider rank order, then encyclopedia results. The
// returned bundle is never nil; it is empty when both sources fail or
// find nothing.
func (g *Gatherer) Gather(ctx context.Context, question string) *model.EvidenceBundle {
	var webResults []search.WebResult
	var wikiResults []search.WikiResult

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if g.web == nil {
			return nil
		}
		results, err := g.web.Search(gctx, question, g.maxWebResults)
		if err != nil {
			// Degrade to no web evidence
			return nil
		}
		webResults = results
		return nil
	})

	group.Go(func() error {
		if g.encyclopedia == nil {
			return nil
		}
		results, err := g.encyclopedia.Search(gctx, question, g.maxWikiResults)
		if err != nil {
			return nil
		}
		wikiResults = results
		return nil
	})

	_ = group.Wait()

	bundle := &model.EvidenceBundle{
		Question: question,
		Items:    make([]model.EvidenceItem, 0, len(webResults)+len(wikiResults)),
	}
	for _, r := range webResults {
		bundle.Items = append(bundle.Items, model.EvidenceItem{
			Origin:  model.OriginWeb,
			Locator: r.URL,
			Excerpt: r.Content,
		})
	}
	for _, r := range wikiResults {
		bundle.Items = append(bundle.Items, model.EvidenceItem{
			Origin:  model.OriginEncyclopedia,
			Locator: r.Title,
			Excerpt: r.Snippet,
		})
	}
	return bundle
}
