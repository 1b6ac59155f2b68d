package core

// Chunk represents one frame of the engine's outbound stream. Concrete
// chunk types implement the unexported isChunk marker enabling a closed
// set of exactly four cases.
//
// Ordering contract for one turn: exactly one MetadataChunk first, zero or
// more TextChunks in arrival order, then exactly one terminal chunk
// (DoneChunk or ErrorChunk, never both, never neither).
type Chunk interface{ isChunk() }

// MetadataChunk is the mandatory first frame of a turn. ReferencedNodes is
// a snapshot; the terminal DoneChunk carries the final set, which may have
// grown through concept capture while text was streaming.
type MetadataChunk struct {
	AgentID          string         `json:"agent_id"`
	Jurisdictions    []string       `json:"jurisdictions,omitempty"`
	UncertaintyLevel string         `json:"uncertainty_level,omitempty"`
	ReferencedNodes  []ResolvedNode `json:"referenced_nodes,omitempty"`
}

// isChunk implements the Chunk interface for MetadataChunk.
func (MetadataChunk) isChunk() {}

// TextChunk is one verbatim delta of the answer text.
type TextChunk struct {
	Delta string `json:"delta"`
}

// isChunk implements the Chunk interface for TextChunk.
func (TextChunk) isChunk() {}

// DoneChunk is the successful terminal frame.
type DoneChunk struct {
	FollowUps       []string       `json:"follow_ups,omitempty"`
	ReferencedNodes []ResolvedNode `json:"referenced_nodes,omitempty"`
	Disclaimer      string         `json:"disclaimer,omitempty"`
}

// isChunk implements the Chunk interface for DoneChunk.
func (DoneChunk) isChunk() {}

// ErrorChunk is the failed terminal frame.
type ErrorChunk struct {
	Message string `json:"message"`
}

// isChunk implements the Chunk interface for ErrorChunk.
func (ErrorChunk) isChunk() {}
