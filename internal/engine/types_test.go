package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceTier(t *testing.T) {
	assert.Equal(t, "high", TierHigh.String())
	assert.Equal(t, "medium", TierMedium.String())
	assert.Equal(t, "low", TierLow.String())
	assert.True(t, TierHigh > TierMedium && TierMedium > TierLow)

	b, err := json.Marshal(TierMedium)
	require.NoError(t, err)
	assert.Equal(t, `"medium"`, string(b))
}

func TestTierFromLabel(t *testing.T) {
	tests := []struct {
		label    string
		expected ConfidenceTier
	}{
		{"high", TierHigh},
		{"High", TierHigh},
		{"medium", TierMedium},
		{"MEDIUM", TierMedium},
		{"low", TierLow},
		{"", TierLow},
		{"certain", TierLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, TierFromLabel(tt.label), "label %q", tt.label)
	}
}

func TestRankedResultJSON(t *testing.T) {
	r := &RankedResult{
		Source: SourceVisionEconomy,
		Candidates: []CandidateMatch{
			{DetectedSubstring: "WAG28461BZ", NormalizedCode: "WAG28461BZ", Tier: TierMedium, Kind: MatchCatalogFuzzy, SimilarityPercent: 90},
		},
		Diagnostic: "BOSCH WAG28461BZ",
	}

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "vision_economy", decoded["source"])
	cands := decoded["candidates"].([]any)
	first := cands[0].(map[string]any)
	assert.Equal(t, "medium", first["confidence_tier"])
	assert.Equal(t, "catalog_fuzzy", first["match_kind"])
	assert.Equal(t, float64(90), first["similarity_percent"])
}
