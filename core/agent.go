package core

import (
	"context"
	"time"

	"github.com/hupe1980/regmesh/logging"
)

// AgentInput is the normalized question handed to a domain agent: the last
// user message, everything before it as history, the request profile and
// the turn timestamp.
type AgentInput struct {
	Question  Message
	History   []Message
	Profile   *UserProfile
	Timestamp time.Time
}

// TimelineEvent is one dated entry produced by a TimelineEngine.
type TimelineEvent struct {
	NodeID      string    `json:"node_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

// TimelineEngine builds effective-date timelines for graph nodes. It is an
// external collaborator passed through to agents untouched.
type TimelineEngine interface {
	EventsFor(ctx context.Context, nodeIDs []string) ([]TimelineEvent, error)
}

// EgressGuard reviews outbound text before it leaves the system. External
// collaborator, passed through to agents untouched.
type EgressGuard interface {
	Review(ctx context.Context, text string) (string, error)
}

// AgentContext aggregates the capabilities an agent may use while handling
// a turn. LLM is always the concept-aware decorated client, so concept
// capture rides invisibly on whatever the agent asks the model.
type AgentContext struct {
	Graph        GraphClient
	Timeline     TimelineEngine
	Egress       EgressGuard
	LLM          ChatClient
	Profile      *UserProfile
	SystemPrompt string
	Logger       logging.Logger
}

// AgentResult is the blocking-form outcome of a turn.
type AgentResult struct {
	AgentID          string         `json:"agent_id"`
	Answer           string         `json:"answer"`
	ReferencedNodes  []ResolvedNode `json:"referenced_nodes,omitempty"`
	UncertaintyLevel string         `json:"uncertainty_level,omitempty"`
	FollowUps        []string       `json:"follow_ups,omitempty"`
}

// AgentStream is the streaming-form envelope: identifying metadata known
// up front plus the live event stream. Events terminates with a StreamDone
// or StreamError event and is then closed.
type AgentStream struct {
	AgentID          string
	ReferencedNodes  []ResolvedNode
	UncertaintyLevel string
	FollowUps        []string
	Events           <-chan StreamEvent
}

// Agent is the pluggable domain reasoning capability. The engine never
// inspects why an agent accepted a question; selection heuristics live
// entirely behind this interface.
type Agent interface {
	ID() string
	CanHandle(input AgentInput) bool
	Handle(ctx context.Context, input AgentInput, actx *AgentContext) (*AgentResult, error)
}

// StreamingAgent is the optional streaming capability. The engine checks
// for it once per streaming turn and fails fast with
// *StreamingUnsupportedError when absent.
type StreamingAgent interface {
	Agent
	HandleStream(ctx context.Context, input AgentInput, actx *AgentContext) (*AgentStream, error)
}
