package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/regmesh/core"
)

// LLMAgentOptions configure an LLMAgent instance.
type LLMAgentOptions struct {
	// ChatOptions are forwarded to every model call.
	ChatOptions core.ChatOptions
	// UncertaintyLevel is reported on every answer. The reference agent has
	// no grading heuristics, so the level is static.
	UncertaintyLevel string
	// MaxHistoryMessages bounds how much conversation history reaches the
	// model.
	MaxHistoryMessages int
	// FollowUps are suggested after every answer.
	FollowUps []string
}

// LLMAgent is the reference domain agent: it forwards the question and
// history to the chat client and streams the model's answer back. Because
// the engine always hands agents the concept-aware client, concept capture
// works without the agent knowing about it.
type LLMAgent struct {
	id   string
	opts LLMAgentOptions
}

// NewLLMAgent creates a new reference agent with sensible defaults.
func NewLLMAgent(id string, optFns ...func(o *LLMAgentOptions)) *LLMAgent {
	opts := LLMAgentOptions{
		UncertaintyLevel:   "medium",
		MaxHistoryMessages: 20,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &LLMAgent{id: id, opts: opts}
}

// ID implements core.Agent.
func (a *LLMAgent) ID() string { return a.id }

// CanHandle implements core.Agent. The reference agent accepts everything.
func (a *LLMAgent) CanHandle(core.AgentInput) bool { return true }

// Handle implements core.Agent (blocking form).
func (a *LLMAgent) Handle(ctx context.Context, input core.AgentInput, actx *core.AgentContext) (*core.AgentResult, error) {
	answer, err := actx.LLM.Chat(ctx, a.buildMessages(input, actx), a.opts.ChatOptions)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.id, err)
	}

	if actx.Egress != nil {
		reviewed, err := actx.Egress.Review(ctx, answer)
		if err != nil {
			return nil, fmt.Errorf("agent %s egress review: %w", a.id, err)
		}
		answer = reviewed
	}

	return &core.AgentResult{
		AgentID:          a.id,
		Answer:           answer,
		UncertaintyLevel: a.opts.UncertaintyLevel,
		FollowUps:        a.opts.FollowUps,
	}, nil
}

// HandleStream implements core.StreamingAgent.
func (a *LLMAgent) HandleStream(ctx context.Context, input core.AgentInput, actx *core.AgentContext) (*core.AgentStream, error) {
	events, err := actx.LLM.StreamChat(ctx, a.buildMessages(input, actx), a.opts.ChatOptions)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.id, err)
	}

	return &core.AgentStream{
		AgentID:          a.id,
		UncertaintyLevel: a.opts.UncertaintyLevel,
		FollowUps:        a.opts.FollowUps,
		Events:           events,
	}, nil
}

// buildMessages assembles system prompt, bounded history and the question.
func (a *LLMAgent) buildMessages(input core.AgentInput, actx *core.AgentContext) []core.Message {
	history := input.History
	if max := a.opts.MaxHistoryMessages; max > 0 && len(history) > max {
		history = history[len(history)-max:]
	}

	messages := make([]core.Message, 0, len(history)+2)
	if actx.SystemPrompt != "" {
		messages = append(messages, core.Message{Role: core.RoleSystem, Text: actx.SystemPrompt})
	}
	messages = append(messages, history...)
	messages = append(messages, input.Question)
	return messages
}
