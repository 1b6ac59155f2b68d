package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/regmesh/core"
	"github.com/hupe1980/regmesh/logging"
)

// NodeResolver resolves node ids to display metadata. Satisfied by
// graph.NodeResolver; abstracted here so tests can fake resolution.
type NodeResolver interface {
	Resolve(ctx context.Context, ids []string) []core.ResolvedNode
}

// LoadedContext is the continuity state available at the start of a turn.
// The zero value means "no continuity": first turn, no store, or a load
// failure that was absorbed.
type LoadedContext struct {
	ActiveIDs []string
	Nodes     []core.ResolvedNode
	Summary   string
}

// continuity loads and persists the per-conversation active node set.
// Every failure on these paths is logged and absorbed: losing continuity
// is less harmful than failing a turn.
type continuity struct {
	store    core.ContextStore
	resolver NodeResolver
	logger   logging.Logger
}

// Load fetches the prior turns' active node ids, resolves them to display
// metadata and renders the one-sentence continuity summary used as a
// prompt aspect.
func (c *continuity) Load(ctx context.Context, key core.ConversationKey) LoadedContext {
	if c.store == nil || !key.Valid() {
		return LoadedContext{}
	}

	cc, err := c.store.Load(ctx, key)
	if err != nil {
		c.logger.Warn("context.load.failed",
			"tenant_id", key.TenantID, "conversation_id", key.ConversationID, "error", err.Error())
		return LoadedContext{}
	}
	if cc == nil || len(cc.ActiveNodeIDs) == 0 {
		return LoadedContext{}
	}

	loaded := LoadedContext{ActiveIDs: cc.ActiveNodeIDs}
	if c.resolver != nil {
		loaded.Nodes = c.resolver.Resolve(ctx, cc.ActiveNodeIDs)
	}
	loaded.Summary = continuitySummary(loaded.Nodes)
	return loaded
}

// Persist merges this turn's referenced node ids into the stored context.
// The atomic merge capability is preferred; the load-union-save fallback
// can drop concurrent updates, an accepted race for stores lacking it.
func (c *continuity) Persist(ctx context.Context, key core.ConversationKey, ids []string) {
	if c.store == nil || !key.Valid() || len(ids) == 0 {
		return
	}

	if merger, ok := c.store.(core.ActiveNodeMerger); ok {
		if err := merger.MergeActiveNodeIDs(ctx, key, ids); err != nil {
			c.logger.Warn("context.merge.failed",
				"tenant_id", key.TenantID, "conversation_id", key.ConversationID, "error", err.Error())
		}
		return
	}

	cc, err := c.store.Load(ctx, key)
	if err != nil {
		c.logger.Warn("context.persist.load_failed",
			"tenant_id", key.TenantID, "conversation_id", key.ConversationID, "error", err.Error())
		return
	}
	if cc == nil {
		cc = &core.ConversationContext{}
	}

	seen := make(map[string]struct{}, len(cc.ActiveNodeIDs))
	for _, id := range cc.ActiveNodeIDs {
		seen[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		cc.ActiveNodeIDs = append(cc.ActiveNodeIDs, id)
	}

	if err := c.store.Save(ctx, key, cc); err != nil {
		c.logger.Warn("context.persist.save_failed",
			"tenant_id", key.TenantID, "conversation_id", key.ConversationID, "error", err.Error())
	}
}

// continuitySummary renders resolved nodes as one prompt sentence. An
// empty node list (including every degradation path) yields no summary.
func continuitySummary(nodes []core.ResolvedNode) string {
	if len(nodes) == 0 {
		return ""
	}
	refs := make([]string, len(nodes))
	for i, n := range nodes {
		refs[i] = fmt.Sprintf("%s (%s)", n.Label, n.Type)
	}
	return fmt.Sprintf("Previous turns referenced: %s. Keep follow-up answers consistent "+
		"with these concepts unless the user changes topic.", strings.Join(refs, ", "))
}
