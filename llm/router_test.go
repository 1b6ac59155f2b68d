package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/regmesh/core"
)

type modelRecorder struct {
	answer string
	model  string
}

func (m *modelRecorder) Chat(_ context.Context, _ []core.Message, opts core.ChatOptions) (string, error) {
	m.model = opts.Model
	return m.answer, nil
}

func (m *modelRecorder) StreamChat(_ context.Context, _ []core.Message, opts core.ChatOptions) (<-chan core.StreamEvent, error) {
	m.model = opts.Model
	out := make(chan core.StreamEvent)
	go func() {
		defer close(out)
		out <- core.StreamEvent{Type: core.StreamText, Text: m.answer}
		out <- core.StreamEvent{Type: core.StreamDone}
	}()
	return out, nil
}

func TestRouterPrefixedModel(t *testing.T) {
	openai := &modelRecorder{answer: "from openai"}
	anthropic := &modelRecorder{answer: "from anthropic"}

	r := NewRouter()
	r.Register("openai", openai)
	r.Register("anthropic", anthropic)

	answer, err := r.Chat(context.Background(), nil, core.ChatOptions{Model: "anthropic/claude-sonnet"})
	require.NoError(t, err)
	assert.Equal(t, "from anthropic", answer)
	assert.Equal(t, "claude-sonnet", anthropic.model, "provider prefix must be stripped")
}

func TestRouterDefaultProvider(t *testing.T) {
	openai := &modelRecorder{answer: "from openai"}

	r := NewRouter()
	r.Register("openai", openai)

	answer, err := r.Chat(context.Background(), nil, core.ChatOptions{Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "from openai", answer)
	assert.Equal(t, "gpt-4o-mini", openai.model)
}

func TestRouterSetDefault(t *testing.T) {
	openai := &modelRecorder{answer: "from openai"}
	anthropic := &modelRecorder{answer: "from anthropic"}

	r := NewRouter()
	r.Register("openai", openai)
	r.Register("anthropic", anthropic)
	r.SetDefault("anthropic")

	answer, err := r.Chat(context.Background(), nil, core.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from anthropic", answer)
}

func TestRouterUnknownPrefixFallsBack(t *testing.T) {
	openai := &modelRecorder{answer: "from openai"}

	r := NewRouter()
	r.Register("openai", openai)

	// "ft/custom" is not a registered provider, so the whole string is a
	// model name for the default provider.
	answer, err := r.Chat(context.Background(), nil, core.ChatOptions{Model: "ft/custom"})
	require.NoError(t, err)
	assert.Equal(t, "from openai", answer)
	assert.Equal(t, "ft/custom", openai.model)
}

func TestRouterEmpty(t *testing.T) {
	r := NewRouter()
	_, err := r.Chat(context.Background(), nil, core.ChatOptions{Model: "gpt-4o-mini"})
	assert.Error(t, err)

	_, err = r.StreamChat(context.Background(), nil, core.ChatOptions{Model: "gpt-4o-mini"})
	assert.Error(t, err)
}

func TestRouterStreamChat(t *testing.T) {
	openai := &modelRecorder{answer: "streamed"}

	r := NewRouter()
	r.Register("openai", openai)

	events, err := r.StreamChat(context.Background(), nil, core.ChatOptions{Model: "openai/gpt-4o"})
	require.NoError(t, err)
	answer, err := CollectText(events)
	require.NoError(t, err)
	assert.Equal(t, "streamed", answer)
	assert.Equal(t, "gpt-4o", openai.model)
}
