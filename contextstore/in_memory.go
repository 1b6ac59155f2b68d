package contextstore

import (
	"context"
	"sync"

	"github.com/hupe1980/regmesh/core"
)

// InMemoryStore is a volatile ContextStore implementation storing contexts
// in a process local map. It is safe for concurrent access and best suited
// for tests or ephemeral demo servers. Each returned context is cloned to
// prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	contexts map[core.ConversationKey]*core.ConversationContext
}

// NewInMemoryStore constructs an empty in-memory context store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{contexts: make(map[core.ConversationKey]*core.ConversationContext)}
}

// Load returns a clone of the stored context, or (nil, nil) when nothing
// has been persisted for the key yet.
func (s *InMemoryStore) Load(_ context.Context, key core.ConversationKey) (*core.ConversationContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cc, ok := s.contexts[key]
	if !ok {
		return nil, nil
	}
	return clone(cc), nil
}

// Save stores a clone of the provided context snapshot.
func (s *InMemoryStore) Save(_ context.Context, key core.ConversationKey, cc *core.ConversationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[key] = clone(cc)
	return nil
}

// MergeActiveNodeIDs implements core.ActiveNodeMerger: a union of ids into
// the stored context under one write lock.
func (s *InMemoryStore) MergeActiveNodeIDs(_ context.Context, key core.ConversationKey, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cc, ok := s.contexts[key]
	if !ok {
		cc = &core.ConversationContext{}
		s.contexts[key] = cc
	}
	cc.ActiveNodeIDs = union(cc.ActiveNodeIDs, ids)
	return nil
}

func clone(cc *core.ConversationContext) *core.ConversationContext {
	if cc == nil {
		return nil
	}
	ids := make([]string, len(cc.ActiveNodeIDs))
	copy(ids, cc.ActiveNodeIDs)
	return &core.ConversationContext{ActiveNodeIDs: ids}
}

// union appends ids not already present, preserving existing order.
func union(existing, ids []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		existing = append(existing, id)
	}
	return existing
}
