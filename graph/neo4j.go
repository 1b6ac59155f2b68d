package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jOptions configure the Neo4j graph client.
type Neo4jOptions struct {
	// Database selects a named database; empty uses the server default.
	Database string
}

// Neo4jClient implements core.GraphClient against a Neo4j server using the
// official driver. Each call runs in its own short-lived session; the
// driver pools connections underneath.
type Neo4jClient struct {
	driver neo4j.DriverWithContext
	opts   Neo4jOptions
}

// NewNeo4jClient connects to the given bolt URI with basic auth.
func NewNeo4jClient(uri, username, password string, optFns ...func(o *Neo4jOptions)) (*Neo4jClient, error) {
	opts := Neo4jOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	return &Neo4jClient{driver: driver, opts: opts}, nil
}

// ExecuteCypher implements core.GraphClient.
func (c *Neo4jClient) ExecuteCypher(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.opts.Database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("running cypher: %w", err)
	}

	var rows []map[string]any
	for result.Next(ctx) {
		rows = append(rows, result.Record().AsMap())
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("consuming cypher result: %w", err)
	}
	return rows, nil
}

// Close releases the underlying driver and its connection pool.
func (c *Neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
