package concept

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/regmesh/core"
	"github.com/hupe1980/regmesh/logging"
)

// ParsePayload normalizes a capture_concepts argument payload into captured
// concept records. Providers are free-form about the shape, so parsing is
// an ordered attempt list: a JSON string is decoded first, then an object
// with a "concepts" array is unwrapped, then a bare array is taken as-is.
// Anything else yields an empty list plus a logged warning. ParsePayload
// never fails the turn.
func ParsePayload(payload any, logger logging.Logger) []core.CapturedConcept {
	logger = logging.OrNoOp(logger)

	switch v := payload.(type) {
	case json.RawMessage:
		payload = string(v)
	case []byte:
		payload = string(v)
	}

	if s, ok := payload.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			logger.Warn("concept.parse.invalid_json", "error", err.Error())
			return nil
		}
		payload = decoded
	}

	switch v := payload.(type) {
	case []core.CapturedConcept:
		return withLabels(v)
	case map[string]any:
		arr, ok := v["concepts"].([]any)
		if !ok {
			logger.Warn("concept.parse.missing_concepts_field")
			return nil
		}
		return decodeItems(arr, logger)
	case []any:
		return decodeItems(v, logger)
	default:
		logger.Warn("concept.parse.unrecognized_shape", "type", fmt.Sprintf("%T", payload))
		return nil
	}
}

// decodeItems converts loosely typed items into CapturedConcept records via
// a JSON round trip, dropping entries without a label.
func decodeItems(items []any, logger logging.Logger) []core.CapturedConcept {
	raw, err := json.Marshal(items)
	if err != nil {
		logger.Warn("concept.parse.marshal_failed", "error", err.Error())
		return nil
	}

	var concepts []core.CapturedConcept
	if err := json.Unmarshal(raw, &concepts); err != nil {
		logger.Warn("concept.parse.decode_failed", "error", err.Error())
		return nil
	}

	return withLabels(concepts)
}

// withLabels filters out records missing the one required field.
func withLabels(concepts []core.CapturedConcept) []core.CapturedConcept {
	out := make([]core.CapturedConcept, 0, len(concepts))
	for _, c := range concepts {
		if c.Label == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
