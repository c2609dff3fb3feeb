package model

// Question is a single yes/no verification question generated for a piece
// of content. Immutable once generated.
type Question struct {
	Text  string `json:"question"`        // The question text itself
	Claim string `json:"claim,omitempty"` // Source claim the question targets, if known
}

// EvidenceOrigin identifies which collaborator produced an evidence item
type EvidenceOrigin string

const (
	OriginWeb          EvidenceOrigin = "web"
	OriginEncyclopedia EvidenceOrigin = "encyclopedia"
)

// EvidenceItem is one normalized search result gathered for a question
type EvidenceItem struct {
	Origin  EvidenceOrigin `json:"origin"`  // web or encyclopedia
	Locator string         `json:"locator"` // URL for web results, article title for encyclopedia
	Excerpt string         `json:"excerpt"` // Content snippet
}

// EvidenceBundle is the ordered evidence set for one question: web results
// first in provider rank order, then encyclopedia results. May be empty --
// search failure degrades to "no evidence found", never an error.
type EvidenceBundle struct {
	Question string         `json:"question"`
	Items    []EvidenceItem `json:"items"`
}

// WebItems returns the web-sourced items in order
func (b *EvidenceBundle) WebItems() []EvidenceItem {
	return b.byOrigin(OriginWeb)
}

// EncyclopediaItems returns the encyclopedia-sourced items in order
func (b *EvidenceBundle) EncyclopediaItems() []EvidenceItem {
	return b.byOrigin(OriginEncyclopedia)
}

func (b *EvidenceBundle) byOrigin(origin EvidenceOrigin) []EvidenceItem {
	var items []EvidenceItem
	for _, item := range b.Items {
		if item.Origin == origin {
			items = append(items, item)
		}
	}
	return items
}

// IsEmpty reports whether no evidence was found from either source
func (b *EvidenceBundle) IsEmpty() bool {
	return len(b.Items) == 0
}
