// Package prompt assembles system prompts from independent aspects: the
// base instruction, jurisdiction scoping, the user profile, cross-turn
// continuity context and the non-advice disclaimer. The engine consumes it
// through the Pipeline interface so callers can swap in their own
// assembly.
package prompt
