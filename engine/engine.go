package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/regmesh/core"
	"github.com/hupe1980/regmesh/llm"
	"github.com/hupe1980/regmesh/logging"
	"github.com/hupe1980/regmesh/prompt"
)

// Options configures the Engine.
type Options struct {
	// Agent is the domain reasoning capability (required). Use
	// agent.SelectorAgent to multiplex several agents behind one.
	Agent core.Agent

	// Router is the raw multi-provider chat client (required). The engine
	// wraps it per turn with the concept-aware decorator; agents never see
	// the raw client.
	Router core.ChatClient

	// Graph is the knowledge graph handle used for node resolution and
	// concept upserts. Optional; without it concept capture degrades to
	// zero concepts and resolution to placeholder metadata.
	Graph core.GraphClient

	// Resolver turns node ids into display metadata. Optional.
	Resolver NodeResolver

	// ContextStore persists cross-turn continuity. Optional; without it
	// turns are independent.
	ContextStore core.ContextStore

	// Concepts resolves captured concepts into canonical graph nodes.
	// Optional; without it intercepted tool calls are dropped.
	Concepts core.ConceptHandler

	// Prompts assembles the system prompt (defaults to the aspect pipeline).
	Prompts prompt.Pipeline

	// Timeline and Egress are passed through to agents untouched.
	Timeline core.TimelineEngine
	Egress   core.EgressGuard

	// BasePrompt overrides the default base instruction.
	BasePrompt string

	// IncludeDisclaimer controls the non-advice disclaimer on answers.
	IncludeDisclaimer bool

	// Logger receives degradation warnings (defaults to NoOp).
	Logger logging.Logger
}

// ChatResponse is the non-streaming form of a completed turn.
type ChatResponse struct {
	AgentID          string              `json:"agent_id"`
	Answer           string              `json:"answer"`
	Jurisdictions    []string            `json:"jurisdictions,omitempty"`
	ReferencedNodes  []core.ResolvedNode `json:"referenced_nodes,omitempty"`
	UncertaintyLevel string              `json:"uncertainty_level,omitempty"`
	FollowUps        []string            `json:"follow_ups,omitempty"`
	Disclaimer       string              `json:"disclaimer,omitempty"`
}

// Engine orchestrates one conversational turn. Safe for concurrent use;
// all per-turn state (the concept accumulator, the decorated client) is
// created fresh inside each call.
type Engine struct {
	opts       Options
	continuity *continuity
	logger     logging.Logger
}

// New creates an Engine with optional overrides.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Prompts:           prompt.NewAspectPipeline(),
		IncludeDisclaimer: true,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := logging.OrNoOp(opts.Logger)
	return &Engine{
		opts:   opts,
		logger: logger,
		continuity: &continuity{
			store:    opts.ContextStore,
			resolver: opts.Resolver,
			logger:   logger,
		},
	}
}

// turnSetup is the shared outcome of the validation, prompt building and
// delegation preamble used by both turn forms.
type turnSetup struct {
	input    core.AgentInput
	actx     *core.AgentContext
	key      core.ConversationKey
	built    *prompt.BuiltPrompt
	captured *core.IDSet
}

// prepare runs VALIDATING and BUILDING_PROMPT and constructs the per-turn
// concept accumulator plus the decorated client.
func (e *Engine) prepare(ctx context.Context, req core.TurnRequest) (*turnSetup, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	question, history, _ := req.SplitQuestion()
	key := req.ConversationKey()

	loaded := e.continuity.Load(ctx, key)

	built, err := e.opts.Prompts.Build(ctx, prompt.BuildInput{
		BasePrompt:        e.opts.BasePrompt,
		Profile:           req.Profile,
		AgentID:           e.opts.Agent.ID(),
		IncludeDisclaimer: e.opts.IncludeDisclaimer,
		ContextSummary:    loaded.Summary,
		ContextNodes:      loaded.Nodes,
	})
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	captured := core.NewIDSet()
	client := llm.NewConceptAwareClient(
		e.opts.Router, e.opts.Concepts, e.opts.Graph, captured, req.TenantID, e.logger)

	return &turnSetup{
		input: core.AgentInput{
			Question:  question,
			History:   history,
			Profile:   req.Profile,
			Timestamp: time.Now().UTC(),
		},
		actx: &core.AgentContext{
			Graph:        e.opts.Graph,
			Timeline:     e.opts.Timeline,
			Egress:       e.opts.Egress,
			LLM:          client,
			Profile:      req.Profile,
			SystemPrompt: built.SystemPrompt,
			Logger:       e.logger,
		},
		key:      key,
		built:    built,
		captured: captured,
	}, nil
}

// HandleChat runs one turn in blocking form. Validation failures surface
// as *core.ValidationError with no partial work performed.
func (e *Engine) HandleChat(ctx context.Context, req core.TurnRequest) (*ChatResponse, error) {
	setup, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := e.opts.Agent.Handle(ctx, setup.input, setup.actx)
	if err != nil {
		return nil, fmt.Errorf("handling turn: %w", err)
	}

	merged := e.mergeReferenced(result.ReferencedNodes, setup.captured)
	if ctx.Err() == nil {
		e.continuity.Persist(ctx, setup.key, nodeIDs(merged))
	}

	agentID := result.AgentID
	if agentID == "" {
		agentID = e.opts.Agent.ID()
	}

	return &ChatResponse{
		AgentID:          agentID,
		Answer:           result.Answer,
		Jurisdictions:    setup.built.Context.Jurisdictions,
		ReferencedNodes:  merged,
		UncertaintyLevel: result.UncertaintyLevel,
		FollowUps:        result.FollowUps,
		Disclaimer:       e.disclaimer(setup.built),
	}, nil
}

// HandleChatStream runs one turn in streaming form. The returned channel
// always yields a protocol-complete sequence — exactly one metadata chunk,
// text deltas in order, then one terminal chunk — and is closed afterwards.
// Cancelling ctx tears the turn down without persisting context.
func (e *Engine) HandleChatStream(ctx context.Context, req core.TurnRequest) <-chan core.Chunk {
	out := make(chan core.Chunk)
	go func() {
		defer close(out)
		e.streamTurn(ctx, req, out)
	}()
	return out
}

// streamTurn drives the VALIDATING → BUILDING_PROMPT → DELEGATING →
// STREAMING_TEXT → PERSISTING → DONE state machine for one turn, entering
// the absorbing error state from any step.
func (e *Engine) streamTurn(ctx context.Context, req core.TurnRequest, out chan<- core.Chunk) {
	emit := func(c core.Chunk) bool {
		select {
		case out <- c:
			return true
		case <-ctx.Done():
			return false
		}
	}

	setup, err := e.prepare(ctx, req)
	if err != nil {
		emit(core.ErrorChunk{Message: err.Error()})
		return
	}

	streamer, ok := e.opts.Agent.(core.StreamingAgent)
	if !ok {
		err := &core.StreamingUnsupportedError{AgentID: e.opts.Agent.ID()}
		emit(core.ErrorChunk{Message: err.Error()})
		return
	}

	stream, err := streamer.HandleStream(ctx, setup.input, setup.actx)
	if err != nil {
		emit(core.ErrorChunk{Message: fmt.Sprintf("handling turn: %v", err)})
		return
	}

	// The metadata snapshot may lag the accumulator: tool calls can arrive
	// interleaved with text, so the terminal chunk re-merges.
	if !emit(core.MetadataChunk{
		AgentID:          stream.AgentID,
		Jurisdictions:    setup.built.Context.Jurisdictions,
		UncertaintyLevel: stream.UncertaintyLevel,
		ReferencedNodes:  e.mergeReferenced(stream.ReferencedNodes, setup.captured),
	}) {
		return
	}

	for ev := range stream.Events {
		switch ev.Type {
		case core.StreamText:
			if !emit(core.TextChunk{Delta: ev.Text}) {
				return
			}
		case core.StreamError:
			// Terminal: no context persistence against a partial answer.
			emit(core.ErrorChunk{Message: ev.Err})
			return
		}
	}

	if ctx.Err() != nil {
		// Cancelled mid-turn: skip persistence rather than record stale state.
		return
	}

	final := e.mergeReferenced(stream.ReferencedNodes, setup.captured)
	e.continuity.Persist(ctx, setup.key, nodeIDs(final))

	emit(core.DoneChunk{
		FollowUps:       stream.FollowUps,
		ReferencedNodes: final,
		Disclaimer:      e.disclaimer(setup.built),
	})
}

// mergeReferenced unions agent-reported nodes with concept-capture ids.
// Concept-derived nodes not independently known keep the cheap
// "Concept"/"Concept" placeholder; first occurrence by id wins.
func (e *Engine) mergeReferenced(agentNodes []core.ResolvedNode, captured *core.IDSet) []core.ResolvedNode {
	ids := captured.Values()
	conceptNodes := make([]core.ResolvedNode, 0, len(ids))
	for _, id := range ids {
		conceptNodes = append(conceptNodes, core.ResolvedNode{ID: id, Label: "Concept", Type: "Concept"})
	}
	return core.MergeNodes(agentNodes, conceptNodes)
}

// disclaimer returns the fixed notice when the prompt context enables it.
func (e *Engine) disclaimer(built *prompt.BuiltPrompt) string {
	if !built.Context.IncludeDisclaimer {
		return ""
	}
	return prompt.Disclaimer
}

// nodeIDs projects merged nodes onto their ids for persistence.
func nodeIDs(nodes []core.ResolvedNode) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if strings.TrimSpace(n.ID) == "" {
			continue
		}
		ids = append(ids, n.ID)
	}
	return ids
}
