package core

import "context"

// StreamEventType enumerates the provider-level event kinds surfaced by an
// LLM client stream.
type StreamEventType string

const (
	// StreamText is a partial answer text delta.
	StreamText StreamEventType = "text"
	// StreamTool is a completed tool call emitted by the model.
	StreamTool StreamEventType = "tool"
	// StreamError is a terminal provider failure.
	StreamError StreamEventType = "error"
	// StreamDone marks normal exhaustion of the provider stream.
	StreamDone StreamEventType = "done"
)

// ToolCallFunction is the legacy nesting some provider versions use for the
// tool name and arguments.
type ToolCallFunction struct {
	Name      string `json:"name,omitempty"`
	Arguments any    `json:"arguments,omitempty"`
}

// ToolCall is a unified tool call surfaced by a provider. Providers differ
// in where they put the tool name (top-level Name vs Function.Name), so
// both conventions are carried and consumers should go through ToolName.
type ToolCall struct {
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Function  ToolCallFunction `json:"function,omitempty"`
	Arguments any              `json:"arguments,omitempty"`
}

// ToolName returns the tool name regardless of which convention the
// producing provider used.
func (t ToolCall) ToolName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Function.Name
}

// ArgsPayload returns the argument payload, preferring the top-level field.
// The payload shape is provider dependent: a JSON string, a decoded object
// or a bare array.
func (t ToolCall) ArgsPayload() any {
	if t.Arguments != nil {
		return t.Arguments
	}
	return t.Function.Arguments
}

// StreamEvent is one frame of a provider stream. Exactly one of the
// payload fields is meaningful depending on Type.
type StreamEvent struct {
	Type     StreamEventType `json:"type"`
	Text     string          `json:"text,omitempty"`
	ToolCall *ToolCall       `json:"tool_call,omitempty"`
	Err      string          `json:"error,omitempty"`
}

// FunctionDefinition describes an individual function (tool) exposed to
// the model. Parameters is a minimal JSON Schema object.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// ChatOptions carries per-call generation parameters. Temperature is a
// pointer so an explicit 0 (deterministic sampling) is distinguishable from
// "use the provider default".
type ChatOptions struct {
	Model       string           `json:"model,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	MaxTokens   int64            `json:"max_tokens,omitempty"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	ToolChoice  string           `json:"tool_choice,omitempty"` // "auto", "none"
}

// ChatClient is the capability handed to domain agents: ordinary chat plus
// streaming chat over a multi-provider LLM backend. Streams terminate with
// a StreamDone or StreamError event and are then closed.
type ChatClient interface {
	// Chat returns the concatenated answer text of a full completion.
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)

	// StreamChat returns a stream of events. The returned channel is closed
	// after the terminal event; callers abandon it by cancelling ctx.
	StreamChat(ctx context.Context, messages []Message, opts ChatOptions) (<-chan StreamEvent, error)
}
