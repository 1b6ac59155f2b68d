// Package anthropic adapts the Anthropic Messages API (streaming +
// tool use) to the core.ChatClient interface. Text deltas are forwarded as
// they arrive; tool use blocks are taken from the accumulated message and
// emitted exactly once per call when the stream finishes.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/hupe1980/regmesh/core"
	"github.com/hupe1980/regmesh/llm"
)

// Options configure the Anthropic adapter (model id, temperature, max
// tokens, API key).
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Client wraps the Anthropic Messages API behind core.ChatClient.
type Client struct {
	api  *anthropic.Client
	opts Options
}

// NewClient creates a new Anthropic client using the official SDK.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.2,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	api := anthropic.NewClient(clientOpts...)

	return &Client{api: &api, opts: opts}
}

// NewClientFromAPI creates a new Anthropic client from an existing SDK client.
func NewClientFromAPI(api *anthropic.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.2,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{api: api, opts: opts}
}

// StreamChat implements core.ChatClient.
func (c *Client) StreamChat(
	ctx context.Context,
	messages []core.Message,
	opts core.ChatOptions,
) (<-chan core.StreamEvent, error) {
	params := c.buildParams(messages, opts)
	out := make(chan core.StreamEvent, 32)

	go func() {
		defer close(out)

		stream := c.api.Messages.NewStreaming(ctx, params)
		acc := anthropic.Message{}

		for stream.Next() {
			event := stream.Current()
			if err := acc.Accumulate(event); err != nil {
				out <- core.StreamEvent{Type: core.StreamError, Err: fmt.Sprintf("anthropic accumulate error: %v", err)}
				return
			}
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
					out <- core.StreamEvent{Type: core.StreamText, Text: delta.Text}
				}
			}
		}

		if err := stream.Err(); err != nil {
			out <- core.StreamEvent{Type: core.StreamError, Err: fmt.Sprintf("anthropic streaming error: %v", err)}
			return
		}

		for _, block := range acc.Content {
			if block.Type != "tool_use" {
				continue
			}
			toolBlock := block.AsToolUse()
			args := ""
			if toolBlock.Input != nil {
				if raw, err := json.Marshal(toolBlock.Input); err == nil {
					args = string(raw)
				}
			}
			out <- core.StreamEvent{Type: core.StreamTool, ToolCall: &core.ToolCall{
				ID:       toolBlock.ID,
				Name:     toolBlock.Name,
				Function: core.ToolCallFunction{Name: toolBlock.Name, Arguments: args},
			}}
		}

		out <- core.StreamEvent{Type: core.StreamDone}
	}()

	return out, nil
}

// Chat implements core.ChatClient by draining the streaming form.
func (c *Client) Chat(ctx context.Context, messages []core.Message, opts core.ChatOptions) (string, error) {
	events, err := c.StreamChat(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	return llm.CollectText(events)
}

// buildParams assembles the Messages API request. System messages are
// lifted into the dedicated system field; tool choice "auto" is the
// provider default when tools are present.
func (c *Client) buildParams(messages []core.Message, opts core.ChatOptions) anthropic.MessageNewParams {
	model := c.opts.Model
	if opts.Model != "" {
		model = anthropic.Model(opts.Model)
	}
	temperature := c.opts.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	maxTokens := c.opts.MaxTokens
	if opts.MaxTokens != 0 {
		maxTokens = opts.MaxTokens
	}

	var system []anthropic.TextBlockParam
	var msgs []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			if m.Text != "" {
				system = append(system, anthropic.TextBlockParam{Text: m.Text})
			}
		case core.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       model,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(opts.Tools) > 0 && opts.ToolChoice != "none" {
		params.Tools = buildTools(opts.Tools)
	}
	return params
}

// buildTools converts tool definitions to the Anthropic tool format.
func buildTools(tools []core.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, tool := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if params := tool.Function.Parameters; params != nil {
			if properties, ok := params["properties"]; ok {
				inputSchema.Properties = properties
			}
			if required, ok := params["required"]; ok {
				switch req := required.(type) {
				case []string:
					inputSchema.Required = req
				case []any:
					for _, r := range req {
						if s, ok := r.(string); ok {
							inputSchema.Required = append(inputSchema.Required, s)
						}
					}
				}
			}
		}
		out[i] = anthropic.ToolUnionParamOfTool(inputSchema, tool.Function.Name)
	}
	return out
}
