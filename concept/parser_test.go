package concept

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/regmesh/core"
)

func TestParsePayloadJSONString(t *testing.T) {
	concepts := ParsePayload(`{"concepts":[{"label":"VAT","type":"Tax"}]}`, nil)
	require.Len(t, concepts, 1)
	assert.Equal(t, "VAT", concepts[0].Label)
	assert.Equal(t, "Tax", concepts[0].Type)
}

func TestParsePayloadBareArrayString(t *testing.T) {
	concepts := ParsePayload(`[{"label":"AML"},{"label":"KYC"}]`, nil)
	require.Len(t, concepts, 2)
	assert.Equal(t, "AML", concepts[0].Label)
	assert.Equal(t, "KYC", concepts[1].Label)
}

func TestParsePayloadDecodedObject(t *testing.T) {
	payload := map[string]any{
		"concepts": []any{
			map[string]any{"label": "GDPR", "jurisdiction": "EU"},
		},
	}
	concepts := ParsePayload(payload, nil)
	require.Len(t, concepts, 1)
	assert.Equal(t, "GDPR", concepts[0].Label)
	assert.Equal(t, "EU", concepts[0].Jurisdiction)
}

func TestParsePayloadDecodedArray(t *testing.T) {
	payload := []any{map[string]any{"label": "MiFID II"}}
	concepts := ParsePayload(payload, nil)
	require.Len(t, concepts, 1)
	assert.Equal(t, "MiFID II", concepts[0].Label)
}

func TestParsePayloadMalformed(t *testing.T) {
	// Invalid shapes degrade to empty, never panic or error.
	assert.Empty(t, ParsePayload("{not json", nil))
	assert.Empty(t, ParsePayload(42, nil))
	assert.Empty(t, ParsePayload(nil, nil))
	assert.Empty(t, ParsePayload(map[string]any{"other": "field"}, nil))
	assert.Empty(t, ParsePayload(`"just a string"`, nil))
}

func TestParsePayloadDropsUnlabeled(t *testing.T) {
	concepts := ParsePayload(`{"concepts":[{"label":"Solvency II"},{"type":"Rule"}]}`, nil)
	require.Len(t, concepts, 1)
	assert.Equal(t, "Solvency II", concepts[0].Label)
}

func TestParsePayloadTypedSlice(t *testing.T) {
	in := []core.CapturedConcept{{Label: "Basel III"}, {}}
	concepts := ParsePayload(in, nil)
	require.Len(t, concepts, 1)
	assert.Equal(t, "Basel III", concepts[0].Label)
}

func TestParsePayloadRawBytes(t *testing.T) {
	concepts := ParsePayload([]byte(`{"concepts":[{"label":"PSD2"}]}`), nil)
	require.Len(t, concepts, 1)
	assert.Equal(t, "PSD2", concepts[0].Label)
}
