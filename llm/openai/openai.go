// Package openai adapts the OpenAI Chat Completions API (streaming +
// function/tool calling) to the core.ChatClient interface. Text deltas are
// forwarded as they arrive; tool call fragments are aggregated and emitted
// exactly once per call when the stream finishes.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/regmesh/core"
	"github.com/hupe1980/regmesh/llm"
)

// aggCall aggregates partial tool call streaming deltas (id, name,
// arguments) so complete tool events can be emitted once per call.
type aggCall struct{ id, name, args string }

// Options configure the OpenAI adapter. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Client wraps the OpenAI Chat Completions API behind core.ChatClient.
type Client struct {
	api  *openai.Client
	opts Options
}

// NewClient creates a new OpenAI client using ambient credentials.
func NewClient(optFns ...func(o *Options)) *Client {
	api := openai.NewClient()
	return NewClientFromAPI(&api, optFns...)
}

// NewClientFromAPI creates a new OpenAI client from an existing SDK client.
func NewClientFromAPI(api *openai.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.2,
		MaxCompletionTokens: 4096,
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

		stream := c.api.Chat.Completions.NewStreaming(ctx, params)
		agg := map[int64]*aggCall{}
		var order []int64

		for stream.Next() {
			ck := stream.Current()
			for _, choice := range ck.Choices {
				if choice.Delta.Content != "" {
					out <- core.StreamEvent{Type: core.StreamText, Text: choice.Delta.Content}
				}
				for _, tc := range choice.Delta.ToolCalls {
					ac, ok := agg[tc.Index]
					if !ok {
						ac = &aggCall{}
						agg[tc.Index] = ac
						order = append(order, tc.Index)
					}
					if tc.ID != "" {
						ac.id = tc.ID
					}
					if tc.Function.Name != "" {
						ac.name = tc.Function.Name
					}
					if tc.Function.Arguments != "" {
						ac.args += tc.Function.Arguments
					}
				}
			}
		}

		if err := stream.Err(); err != nil {
			out <- core.StreamEvent{Type: core.StreamError, Err: fmt.Sprintf("openai streaming error: %v", err)}
			return
		}

		for _, idx := range order {
			ac := agg[idx]
			out <- core.StreamEvent{Type: core.StreamTool, ToolCall: &core.ToolCall{
				ID:       ac.id,
				Name:     ac.name,
				Function: core.ToolCallFunction{Name: ac.name, Arguments: ac.args},
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

// buildParams assembles the request including tool definitions. Tool
// choice "auto" is the provider default when tools are present, so only
// "none" needs explicit suppression by omitting the tools.
func (c *Client) buildParams(messages []core.Message, opts core.ChatOptions) openai.ChatCompletionNewParams {
	model := c.opts.Model
	if opts.Model != "" {
		model = opts.Model
	}
	temperature := c.opts.Temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	maxTokens := c.opts.MaxCompletionTokens
	if opts.MaxTokens != 0 {
		maxTokens = opts.MaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(messages),
		Model:               model,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}

	if len(opts.Tools) == 0 || opts.ToolChoice == "none" {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(opts.Tools))
	for i, tdef := range opts.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
			},
		}
	}
	params.Tools = tools
	return params
}

// buildMessages converts chat messages into OpenAI message params.
func buildMessages(messages []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(m.Text))
		case core.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Text))
		default:
			out = append(out, openai.UserMessage(m.Text))
		}
	}
	return out
}
