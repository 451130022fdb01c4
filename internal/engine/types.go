// Package engine implements the nameplate recognition pipeline: recognizer
// output normalization, model-code extraction, catalog matching, ranking,
// and the cost-ordered waterfall over recognizer stages.
package engine

import (
	"encoding/json"

	"github.com/fieldserve/nameplate-cli/internal/catalog"
)

// SourceKind identifies which recognizer back-end produced an attempt.
type SourceKind string

const (
	SourceVisionPremium SourceKind = "vision_premium"
	SourceVisionEconomy SourceKind = "vision_economy"
	SourceOCRLocal      SourceKind = "ocr_local"
)

// StructuredGuess is the parsed structured response from the premium
// vision-language back-end. All fields are free text as returned by the model.
type StructuredGuess struct {
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	DeviceType   string `json:"device_type"`
	Capacity     string `json:"capacity"`
	SerialNumber string `json:"serial_number"`
	Confidence   string `json:"confidence"` // "high", "medium", or "low"
}

// RecognitionAttempt is the uniform result of one recognizer adapter call.
// Adapters never return errors; failures surface as Succeeded=false with a
// human-readable ErrorReason for logs.
type RecognitionAttempt struct {
	Source      SourceKind
	RawText     string
	Succeeded   bool
	ErrorReason string

	// Structured is set only by the premium vision stage when the backend
	// response parsed cleanly. It bypasses pattern extraction.
	Structured *StructuredGuess
}

// FailedAttempt builds a failed RecognitionAttempt for a stage.
func FailedAttempt(source SourceKind, reason string) RecognitionAttempt {
	return RecognitionAttempt{Source: source, ErrorReason: reason}
}

// MatchKind describes how a candidate was reconciled against the catalog.
type MatchKind string

const (
	MatchCatalogExact MatchKind = "catalog_exact"
	MatchCatalogFuzzy MatchKind = "catalog_fuzzy"
	MatchAIStructured MatchKind = "ai_structured"
	MatchUnmatched    MatchKind = "unmatched"
)

// ConfidenceTier is a coarse trust bucket for a candidate match.
// Higher values sort first.
type ConfidenceTier int

const (
	TierLow ConfidenceTier = iota + 1
	TierMedium
	TierHigh
)

func (t ConfidenceTier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// MarshalJSON renders the tier as its string name.
func (t ConfidenceTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// TierFromLabel maps a backend's self-reported confidence label to a tier.
// Unknown labels map to low.
func TierFromLabel(label string) ConfidenceTier {
	switch label {
	case "high", "HIGH", "High":
		return TierHigh
	case "medium", "MEDIUM", "Medium":
		return TierMedium
	default:
		return TierLow
	}
}

// CandidateMatch is one proposed model identification.
type CandidateMatch struct {
	DetectedSubstring string         `json:"detected_substring"`
	NormalizedCode    string         `json:"normalized_code"`
	Entry             *catalog.Entry `json:"catalog_entry,omitempty"`
	Tier              ConfidenceTier `json:"confidence_tier"`
	Kind              MatchKind      `json:"match_kind"`

	// SimilarityPercent is set only for fuzzy matches (0 otherwise).
	SimilarityPercent int `json:"similarity_percent,omitempty"`
}

// RankedResult is the engine's output: candidates ordered highest confidence
// first with duplicates removed, plus the diagnostic text of the recognizer
// stage that produced them.
type RankedResult struct {
	Source     SourceKind       `json:"source,omitempty"`
	Candidates []CandidateMatch `json:"candidates"`
	Diagnostic string           `json:"diagnostic,omitempty"`
}

// Empty reports whether the result carries no candidates.
func (r *RankedResult) Empty() bool {
	return len(r.Candidates) == 0
}
