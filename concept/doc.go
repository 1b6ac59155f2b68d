// Package concept implements the concept-capture side channel: the fixed
// capture_concepts tool definition exposed to models, the defensive payload
// parser that normalizes whatever argument shape a provider emits, and a
// graph-backed canonical handler that resolves captured concepts into
// existing-or-newly-created graph nodes.
package concept
