package concept

import "github.com/hupe1980/regmesh/core"

// ToolName is the reserved name of the concept capture tool. Tool calls
// carrying this name are intercepted by the concept-aware client and never
// reach the downstream consumer.
const ToolName = "capture_concepts"

// ToolDefinition returns the fixed tool definition injected into every
// outbound model request. Each reported concept requires at least a label;
// everything else is optional enrichment.
func ToolDefinition() core.ToolDefinition {
	return core.ToolDefinition{
		Type: "function",
		Function: core.FunctionDefinition{
			Name: ToolName,
			Description: "Report regulatory concepts mentioned in or relevant to the answer " +
				"so they can be recorded in the knowledge graph. Call whenever the answer " +
				"touches rules, thresholds, schemes or obligations worth tracking.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"concepts": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"label":           map[string]any{"type": "string"},
								"type":            map[string]any{"type": "string"},
								"jurisdiction":    map[string]any{"type": "string"},
								"domain":          map[string]any{"type": "string"},
								"kind":            map[string]any{"type": "string"},
								"preferred_label": map[string]any{"type": "string"},
								"alt_labels":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
								"definition":      map[string]any{"type": "string"},
								"source_urls":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
								"canonical_id":    map[string]any{"type": "string"},
							},
							"required": []string{"label"},
						},
					},
				},
				"required": []string{"concepts"},
			},
		},
	}
}
