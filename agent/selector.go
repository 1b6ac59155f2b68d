package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/regmesh/core"
)

// SelectorAgent routes each question to the first registered sub-agent
// whose CanHandle accepts it. Selection happens entirely inside this
// capability; the engine never learns why an agent was chosen.
type SelectorAgent struct {
	id     string
	agents []core.Agent
}

// NewSelectorAgent creates a selector over the given sub-agents,
// consulted in registration order.
func NewSelectorAgent(id string, agents ...core.Agent) *SelectorAgent {
	return &SelectorAgent{id: id, agents: agents}
}

// ID implements core.Agent.
func (s *SelectorAgent) ID() string { return s.id }

// CanHandle implements core.Agent.
func (s *SelectorAgent) CanHandle(input core.AgentInput) bool {
	return s.pick(input) != nil
}

// pick returns the first capable sub-agent, or nil.
func (s *SelectorAgent) pick(input core.AgentInput) core.Agent {
	for _, a := range s.agents {
		if a.CanHandle(input) {
			return a
		}
	}
	return nil
}

// Handle implements core.Agent by delegating to the selected sub-agent.
func (s *SelectorAgent) Handle(ctx context.Context, input core.AgentInput, actx *core.AgentContext) (*core.AgentResult, error) {
	picked := s.pick(input)
	if picked == nil {
		return nil, fmt.Errorf("selector %s: no agent can handle the question", s.id)
	}
	return picked.Handle(ctx, input, actx)
}

// HandleStream implements core.StreamingAgent. Selecting a sub-agent that
// only supports the blocking form fails the turn with a typed error; the
// selector never silently degrades to non-streaming.
func (s *SelectorAgent) HandleStream(ctx context.Context, input core.AgentInput, actx *core.AgentContext) (*core.AgentStream, error) {
	picked := s.pick(input)
	if picked == nil {
		return nil, fmt.Errorf("selector %s: no agent can handle the question", s.id)
	}
	streamer, ok := picked.(core.StreamingAgent)
	if !ok {
		return nil, &core.StreamingUnsupportedError{AgentID: picked.ID()}
	}
	return streamer.HandleStream(ctx, input, actx)
}
