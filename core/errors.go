package core

import "fmt"

// ValidationError reports a structurally invalid turn request. No partial
// work is performed when one is returned.
type ValidationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid turn request: %s", e.Reason)
}

// StreamingUnsupportedError reports that a streaming turn was requested
// from an agent that only implements the blocking form. The engine never
// silently degrades to non-streaming, it fails the turn with this error.
type StreamingUnsupportedError struct {
	AgentID string
}

// Error implements the error interface.
func (e *StreamingUnsupportedError) Error() string {
	return fmt.Sprintf("agent %q does not support streaming", e.AgentID)
}
