package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/regmesh/core"
)

func newTestClient() *Client {
	return &Client{opts: Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.2,
		MaxTokens:   4096,
	}}
}

func TestBuildParamsDefaults(t *testing.T) {
	params := newTestClient().buildParams(nil, core.ChatOptions{})
	assert.Equal(t, anthropic.ModelClaude3_5Sonnet20241022, params.Model)
	assert.Equal(t, anthropic.Float(0.2), params.Temperature)
	assert.Equal(t, int64(4096), params.MaxTokens)
}

func TestBuildParamsExplicitZeroTemperature(t *testing.T) {
	zero := 0.0
	params := newTestClient().buildParams(nil, core.ChatOptions{Temperature: &zero})
	assert.Equal(t, anthropic.Float(0), params.Temperature)
}

func TestBuildParamsSystemLifting(t *testing.T) {
	params := newTestClient().buildParams([]core.Message{
		{Role: core.RoleSystem, Text: "You are a helper."},
		{Role: core.RoleUser, Text: "hi"},
	}, core.ChatOptions{})

	require.Len(t, params.System, 1)
	assert.Equal(t, "You are a helper.", params.System[0].Text)
	require.Len(t, params.Messages, 1)
}

func TestBuildParamsToolChoiceNone(t *testing.T) {
	tool := core.ToolDefinition{
		Type: "function",
		Function: core.FunctionDefinition{
			Name:       "capture",
			Parameters: map[string]any{"properties": map[string]any{}, "required": []string{"label"}},
		},
	}

	params := newTestClient().buildParams(nil, core.ChatOptions{
		Tools:      []core.ToolDefinition{tool},
		ToolChoice: "none",
	})
	assert.Empty(t, params.Tools)

	params = newTestClient().buildParams(nil, core.ChatOptions{Tools: []core.ToolDefinition{tool}})
	require.Len(t, params.Tools, 1)
}
