package core

import "context"

// ConversationKey scopes continuity state to one conversation of one
// tenant. Continuity is disabled for a turn unless both parts are set.
type ConversationKey struct {
	TenantID       string `json:"tenant_id"`
	ConversationID string `json:"conversation_id"`
}

// Valid reports whether the key identifies a persistable conversation.
func (k ConversationKey) Valid() bool {
	return k.TenantID != "" && k.ConversationID != ""
}

// ConversationContext is the compact cross-turn state: the set of graph
// node ids "active" in a conversation. It only ever grows under the
// engine's control; pruning and expiry are a store concern.
type ConversationContext struct {
	ActiveNodeIDs []string `json:"active_node_ids"`
}

// ContextStore persists conversation contexts. Load returns (nil, nil)
// when nothing is persisted yet.
type ContextStore interface {
	Load(ctx context.Context, key ConversationKey) (*ConversationContext, error)
	Save(ctx context.Context, key ConversationKey, cc *ConversationContext) error
}

// ActiveNodeMerger is an optional ContextStore capability: an atomic union
// of ids into the persisted context. Stores should implement it; without
// it the engine falls back to load-then-union-then-save, which can drop
// updates under concurrent turns in the same conversation.
type ActiveNodeMerger interface {
	MergeActiveNodeIDs(ctx context.Context, key ConversationKey, ids []string) error
}
