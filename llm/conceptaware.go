package llm

import (
	"context"

	"github.com/hupe1980/regmesh/concept"
	"github.com/hupe1980/regmesh/core"
	"github.com/hupe1980/regmesh/logging"
)

// ConceptAwareClient decorates an inner chat client so that concept capture
// rides invisibly on the primary answer stream. Every outbound request
// gains the fixed capture_concepts tool definition; tool calls carrying
// that name are intercepted, resolved through the concept handler and
// accumulated into the turn's id set instead of being forwarded. All other
// events pass through unchanged and in order.
//
// One ConceptAwareClient belongs to exactly one turn: the captured set is
// handed in by reference and read back by the engine after streaming.
type ConceptAwareClient struct {
	inner    core.ChatClient
	handler  core.ConceptHandler
	graph    core.GraphClient
	captured *core.IDSet
	tenantID string
	logger   logging.Logger
}

// NewConceptAwareClient wraps inner with concept capture. captured is the
// per-turn accumulator shared with the engine; tenantID is recorded for
// attribution in logs.
func NewConceptAwareClient(
	inner core.ChatClient,
	handler core.ConceptHandler,
	graph core.GraphClient,
	captured *core.IDSet,
	tenantID string,
	logger logging.Logger,
) *ConceptAwareClient {
	return &ConceptAwareClient{
		inner:    inner,
		handler:  handler,
		graph:    graph,
		captured: captured,
		tenantID: tenantID,
		logger:   logging.OrNoOp(logger),
	}
}

// Captured returns the shared accumulator of canonical concept node ids.
func (c *ConceptAwareClient) Captured() *core.IDSet { return c.captured }

// StreamChat implements core.ChatClient. The returned channel is
// unbuffered so at most one chunk is in flight between the provider and
// the consumer.
func (c *ConceptAwareClient) StreamChat(
	ctx context.Context,
	messages []core.Message,
	opts core.ChatOptions,
) (<-chan core.StreamEvent, error) {
	opts = c.augment(opts)

	inner, err := c.inner.StreamChat(ctx, messages, opts)
	if err != nil {
		return nil, err
	}

	out := make(chan core.StreamEvent)

	go func() {
		defer close(out)
		for ev := range inner {
			if ev.Type == core.StreamTool && ev.ToolCall != nil && ev.ToolCall.ToolName() == concept.ToolName {
				c.capture(ctx, ev.ToolCall)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Chat implements core.ChatClient by draining the streaming form.
func (c *ConceptAwareClient) Chat(ctx context.Context, messages []core.Message, opts core.ChatOptions) (string, error) {
	events, err := c.StreamChat(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	return CollectText(events)
}

// augment injects the capture tool into the request without mutating the
// caller's tool slice.
func (c *ConceptAwareClient) augment(opts core.ChatOptions) core.ChatOptions {
	tools := make([]core.ToolDefinition, 0, len(opts.Tools)+1)
	tools = append(tools, opts.Tools...)
	tools = append(tools, concept.ToolDefinition())
	opts.Tools = tools
	if opts.ToolChoice == "" {
		opts.ToolChoice = "auto"
	}
	return opts
}

// capture parses and resolves one intercepted tool call. A missing handler
// and any failure downgrade to zero concepts captured; nothing on this path
// ever surfaces to the consumer of the stream.
func (c *ConceptAwareClient) capture(ctx context.Context, tc *core.ToolCall) {
	if c.handler == nil {
		c.logger.Debug("concept.capture.skipped", "tenant_id", c.tenantID, "reason", "no handler configured")
		return
	}

	concepts := concept.ParsePayload(tc.ArgsPayload(), c.logger)
	if len(concepts) == 0 {
		return
	}

	ids, err := c.handler.ResolveAndUpsert(ctx, concepts, c.graph)
	if err != nil {
		c.logger.Warn("concept.capture.failed", "tenant_id", c.tenantID, "error", err.Error())
		return
	}

	c.captured.Add(ids...)
	c.logger.Debug("concept.capture.resolved",
		"tenant_id", c.tenantID, "concepts", len(concepts), "ids", len(ids))
}
