package openai

import (
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/regmesh/core"
)

func newTestClient() *Client {
	return &Client{opts: Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.2,
		MaxCompletionTokens: 4096,
	}}
}

func TestBuildParamsDefaults(t *testing.T) {
	params := newTestClient().buildParams(nil, core.ChatOptions{})
	assert.Equal(t, openai.ChatModel(openai.ChatModelGPT4oMini), params.Model)
	assert.Equal(t, openai.Float(0.2), params.Temperature)
	assert.Equal(t, openai.Int(4096), params.MaxCompletionTokens)
}

func TestBuildParamsExplicitZeroTemperature(t *testing.T) {
	zero := 0.0
	params := newTestClient().buildParams(nil, core.ChatOptions{Temperature: &zero})
	assert.Equal(t, openai.Float(0), params.Temperature)
}

func TestBuildParamsOverrides(t *testing.T) {
	temp := 0.9
	params := newTestClient().buildParams(nil, core.ChatOptions{
		Model:       "gpt-4o",
		Temperature: &temp,
		MaxTokens:   128,
	})
	assert.Equal(t, openai.ChatModel("gpt-4o"), params.Model)
	assert.Equal(t, openai.Float(0.9), params.Temperature)
	assert.Equal(t, openai.Int(128), params.MaxCompletionTokens)
}

func TestBuildParamsToolChoiceNone(t *testing.T) {
	tool := core.ToolDefinition{Type: "function", Function: core.FunctionDefinition{Name: "capture"}}

	params := newTestClient().buildParams(nil, core.ChatOptions{
		Tools:      []core.ToolDefinition{tool},
		ToolChoice: "none",
	})
	assert.Empty(t, params.Tools)

	params = newTestClient().buildParams(nil, core.ChatOptions{Tools: []core.ToolDefinition{tool}})
	require.Len(t, params.Tools, 1)
	assert.Equal(t, "capture", params.Tools[0].Function.Name)
}
