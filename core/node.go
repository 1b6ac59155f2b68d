package core

import "sync"

// ResolvedNode is the canonical, display-ready form of a graph node
// surfaced by an answer. Identity is the ID; Label and Type are hints for
// rendering and prompt construction.
type ResolvedNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// MergeNodes combines node lists from independent sources into one
// deduplicated set keyed by ID. The first occurrence of an ID wins;
// later duplicates are dropped. Input order is preserved.
func MergeNodes(sets ...[]ResolvedNode) []ResolvedNode {
	seen := make(map[string]struct{})
	var merged []ResolvedNode
	for _, set := range sets {
		for _, n := range set {
			if _, ok := seen[n.ID]; ok {
				continue
			}
			seen[n.ID] = struct{}{}
			merged = append(merged, n)
		}
	}
	return merged
}

// IDSet is an insertion-ordered set of node ids. One IDSet is owned by a
// single turn and accumulates canonical concept ids while the provider
// stream is still running, so access is synchronized.
type IDSet struct {
	mu    sync.Mutex
	ids   map[string]struct{}
	order []string
}

// NewIDSet returns an empty set.
func NewIDSet() *IDSet {
	return &IDSet{ids: make(map[string]struct{})}
}

// Add inserts ids, ignoring duplicates and empty strings.
func (s *IDSet) Add(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s.ids[id]; ok {
			continue
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

// Values returns the ids in insertion order as a fresh slice.
func (s *IDSet) Values() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len reports the number of ids in the set.
func (s *IDSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
