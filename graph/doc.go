// Package graph provides the engine's narrow view of the knowledge graph:
// a Neo4j-backed core.GraphClient and the batched NodeResolver that turns
// node ids into display-ready id/label/type triples. Richer graph
// operations belong to the domain agent, not here.
package graph
