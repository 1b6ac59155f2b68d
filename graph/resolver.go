package graph

import (
	"context"

	"github.com/hupe1980/regmesh/core"
	"github.com/hupe1980/regmesh/logging"
)

// resolveQuery fetches display metadata for a batch of node ids in one
// round trip. Label and type fall back through the property conventions
// used across the graph.
const resolveQuery = `
MATCH (n) WHERE n.id IN $ids
RETURN n.id AS id,
       coalesce(n.preferred_label, n.label, n.name, n.id) AS label,
       coalesce(n.type, head(labels(n)), 'Concept') AS type`

// NodeResolver resolves graph node ids to id/label/type triples with a
// single batched lookup. Resolution is strictly best effort: any failure
// degrades to an empty result plus a logged warning, never a failed turn.
type NodeResolver struct {
	graph  core.GraphClient
	logger logging.Logger
}

// NewNodeResolver creates a resolver over the given graph client.
func NewNodeResolver(graph core.GraphClient, logger logging.Logger) *NodeResolver {
	return &NodeResolver{graph: graph, logger: logging.OrNoOp(logger)}
}

// Resolve looks up the given ids. Unknown ids are simply absent from the
// result; callers decide how to backfill them.
func (r *NodeResolver) Resolve(ctx context.Context, ids []string) []core.ResolvedNode {
	if len(ids) == 0 || r.graph == nil {
		return nil
	}

	rows, err := r.graph.ExecuteCypher(ctx, resolveQuery, map[string]any{"ids": ids})
	if err != nil {
		r.logger.Warn("graph.resolve.failed", "ids", len(ids), "error", err.Error())
		return nil
	}

	nodes := make([]core.ResolvedNode, 0, len(rows))
	for _, row := range rows {
		id, _ := row["id"].(string)
		if id == "" {
			continue
		}
		label, _ := row["label"].(string)
		typ, _ := row["type"].(string)
		nodes = append(nodes, core.ResolvedNode{ID: id, Label: label, Type: typ})
	}
	return nodes
}
