// Package llm provides the multi-provider chat client surface consumed by
// domain agents: a registry Router that dispatches to provider adapters
// (see the openai and anthropic subpackages), stream draining helpers, and
// the concept-aware decorator that transparently runs concept capture on
// top of any inner client.
package llm
