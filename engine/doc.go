// Package engine implements the compliance orchestration core: one
// conversational turn in, one grounded answer out. The engine validates
// the request, loads cross-turn continuity, builds the prompt, delegates
// to the domain agent behind a concept-aware chat client, merges graph
// node references from the agent and from concept capture, emits the
// strict metadata/text/terminal chunk protocol and persists the merged
// node set — best effort — for the next turn.
package engine
