// Package contextstore provides core.ContextStore implementations for the
// per-conversation continuity state (the set of active graph node ids).
// Both stores implement the atomic MergeActiveNodeIDs capability so
// concurrent turns in one conversation never lose updates.
package contextstore
