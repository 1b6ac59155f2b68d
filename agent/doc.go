// Package agent provides ready-to-use domain agent implementations: an
// LLMAgent that answers straight through the (concept-aware) chat client,
// and a SelectorAgent that routes each question to the first capable
// sub-agent. Real deployments plug in their own core.Agent implementations
// with jurisdiction-specific reasoning; the engine does not care which.
package agent
