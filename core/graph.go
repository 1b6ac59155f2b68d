package core

import "context"

// GraphClient is the narrow view of the knowledge graph this engine needs:
// parameterized Cypher execution returning row maps. Richer graph
// operations belong to the domain agent, not this core.
type GraphClient interface {
	ExecuteCypher(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
