package core

import "context"

// CapturedConcept is a regulatory concept reported by the model through the
// capture_concepts tool call. Only Label is required; everything else is a
// best-effort enrichment hint. Captured concepts are never user-supplied.
type CapturedConcept struct {
	Label          string   `json:"label"`
	Type           string   `json:"type,omitempty"`
	Jurisdiction   string   `json:"jurisdiction,omitempty"`
	Domain         string   `json:"domain,omitempty"`
	Kind           string   `json:"kind,omitempty"`
	PreferredLabel string   `json:"preferred_label,omitempty"`
	AltLabels      []string `json:"alt_labels,omitempty"`
	Definition     string   `json:"definition,omitempty"`
	SourceURLs     []string `json:"source_urls,omitempty"`
	CanonicalID    string   `json:"canonical_id,omitempty"`
}

// ConceptHandler resolves free-form captured concepts into
// existing-or-newly-created canonical graph nodes and returns their ids.
type ConceptHandler interface {
	ResolveAndUpsert(ctx context.Context, concepts []CapturedConcept, graph GraphClient) ([]string, error)
}
