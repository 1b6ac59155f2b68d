package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/regmesh/core"
)

type fakeGraphClient struct {
	rows   []map[string]any
	err    error
	params map[string]any
}

func (f *fakeGraphClient) ExecuteCypher(_ context.Context, _ string, params map[string]any) ([]map[string]any, error) {
	f.params = params
	return f.rows, f.err
}

func TestNodeResolverResolve(t *testing.T) {
	client := &fakeGraphClient{rows: []map[string]any{
		{"id": "n1", "label": "VAT Act", "type": "Statute"},
		{"id": "n2", "label": "Reverse charge", "type": "Concept"},
	}}
	r := NewNodeResolver(client, nil)

	nodes := r.Resolve(context.Background(), []string{"n1", "n2"})
	require.Len(t, nodes, 2)
	assert.Equal(t, core.ResolvedNode{ID: "n1", Label: "VAT Act", Type: "Statute"}, nodes[0])
	assert.Equal(t, []string{"n1", "n2"}, client.params["ids"])
}

func TestNodeResolverSkipsMalformedRows(t *testing.T) {
	client := &fakeGraphClient{rows: []map[string]any{
		{"id": "", "label": "bad"},
		{"label": "no id"},
		{"id": "n1", "label": "ok", "type": "Concept"},
	}}
	r := NewNodeResolver(client, nil)

	nodes := r.Resolve(context.Background(), []string{"n1"})
	require.Len(t, nodes, 1)
	assert.Equal(t, "n1", nodes[0].ID)
}

func TestNodeResolverDegradesOnFailure(t *testing.T) {
	client := &fakeGraphClient{err: errors.New("graph down")}
	r := NewNodeResolver(client, nil)

	assert.Nil(t, r.Resolve(context.Background(), []string{"n1"}))
}

func TestNodeResolverEmptyInput(t *testing.T) {
	r := NewNodeResolver(&fakeGraphClient{}, nil)
	assert.Nil(t, r.Resolve(context.Background(), nil))

	r = NewNodeResolver(nil, nil)
	assert.Nil(t, r.Resolve(context.Background(), []string{"n1"}))
}
