package concept

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/regmesh/core"
	"github.com/hupe1980/regmesh/logging"
)

// upsertQuery merges a concept node by normalized label, minting an id on
// first creation and backfilling enrichment fields without clobbering
// existing values.
const upsertQuery = `
MERGE (c:Concept {norm_label: $norm_label})
ON CREATE SET
  c.id = $id,
  c.label = $label,
  c.type = $type
SET
  c.jurisdiction = coalesce(c.jurisdiction, $jurisdiction),
  c.domain = coalesce(c.domain, $domain),
  c.kind = coalesce(c.kind, $kind),
  c.preferred_label = coalesce(c.preferred_label, $preferred_label),
  c.definition = coalesce(c.definition, $definition)
RETURN c.id AS id`

// byIDQuery anchors a concept that already carries a canonical id.
const byIDQuery = `
MERGE (c:Concept {id: $id})
ON CREATE SET c.label = $label, c.type = $type
RETURN c.id AS id`

// GraphHandlerOptions configure the graph-backed concept handler.
type GraphHandlerOptions struct {
	// Concurrency bounds the number of in-flight upserts per tool call.
	Concurrency int
	Logger      logging.Logger
}

// GraphHandler is the default core.ConceptHandler: each captured concept is
// merged into the graph by normalized label (or pre-existing canonical id)
// and its canonical node id returned. Per-concept failures are logged and
// skipped; the handler degrades to "fewer concepts captured", never to a
// failed turn.
type GraphHandler struct {
	opts GraphHandlerOptions
}

// NewGraphHandler creates a GraphHandler with optional overrides.
func NewGraphHandler(optFns ...func(o *GraphHandlerOptions)) *GraphHandler {
	opts := GraphHandlerOptions{
		Concurrency: 4,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &GraphHandler{opts: opts}
}

// ResolveAndUpsert implements core.ConceptHandler. Upserts run concurrently
// but results keep input order, with duplicates and failures dropped.
func (h *GraphHandler) ResolveAndUpsert(
	ctx context.Context,
	concepts []core.CapturedConcept,
	graph core.GraphClient,
) ([]string, error) {
	if graph == nil {
		return nil, fmt.Errorf("no graph write handle provided")
	}
	if len(concepts) == 0 {
		return nil, nil
	}

	results := make([]string, len(concepts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.opts.Concurrency)

	for i, c := range concepts {
		i, c := i, c
		g.Go(func() error {
			id, err := h.upsertOne(gctx, c, graph)
			if err != nil {
				h.opts.Logger.Warn("concept.upsert.failed", "label", c.Label, "error", err.Error())
				return nil
			}
			results[i] = id
			return nil
		})
	}

	// Goroutines never return errors; Wait only propagates ctx cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(results))
	ids := make([]string, 0, len(results))
	for _, id := range results {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// upsertOne merges a single concept and returns its canonical node id.
func (h *GraphHandler) upsertOne(ctx context.Context, c core.CapturedConcept, graph core.GraphClient) (string, error) {
	var rows []map[string]any
	var err error

	if c.CanonicalID != "" {
		rows, err = graph.ExecuteCypher(ctx, byIDQuery, map[string]any{
			"id":    c.CanonicalID,
			"label": c.Label,
			"type":  nonEmpty(c.Type, "Concept"),
		})
	} else {
		rows, err = graph.ExecuteCypher(ctx, upsertQuery, map[string]any{
			"norm_label":      NormalizeLabel(c.Label),
			"id":              uuid.NewString(),
			"label":           c.Label,
			"type":            nonEmpty(c.Type, "Concept"),
			"jurisdiction":    nilIfEmpty(c.Jurisdiction),
			"domain":          nilIfEmpty(c.Domain),
			"kind":            nilIfEmpty(c.Kind),
			"preferred_label": nilIfEmpty(c.PreferredLabel),
			"definition":      nilIfEmpty(c.Definition),
		})
	}
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("upsert returned no rows")
	}
	id, _ := rows[0]["id"].(string)
	if id == "" {
		return "", fmt.Errorf("upsert returned no id")
	}
	return id, nil
}

// NormalizeLabel lowercases and collapses whitespace so near-identical
// model spellings dedupe onto one node.
func NormalizeLabel(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
