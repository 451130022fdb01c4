package engine

import (
	"math"

	"github.com/fieldserve/nameplate-cli/internal/catalog"
)

// MatchPolicy holds the tunable thresholds of the catalog matcher.
type MatchPolicy struct {
	// MaxEditDistance is the largest Levenshtein distance accepted for a
	// fuzzy catalog hit.
	MaxEditDistance int

	// MinUnmatchedLength is the shortest normalized code emitted as an
	// unmatched placeholder. Shorter misses are discarded as noise from
	// incidental alphanumeric fragments.
	MinUnmatchedLength int
}

// DefaultMatchPolicy returns the standard thresholds.
func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{
		MaxEditDistance:    2,
		MinUnmatchedLength: 6,
	}
}

func (p MatchPolicy) withDefaults() MatchPolicy {
	if p.MaxEditDistance <= 0 {
		p.MaxEditDistance = 2
	}
	if p.MinUnmatchedLength <= 0 {
		p.MinUnmatchedLength = 6
	}
	return p
}

// Matcher reconciles candidate code substrings against a reference catalog.
type Matcher struct {
	cat    *catalog.Catalog
	policy MatchPolicy
}

// NewMatcher creates a Matcher over cat. Zero policy fields fall back to
// the defaults.
func NewMatcher(cat *catalog.Catalog, policy MatchPolicy) *Matcher {
	return &Matcher{cat: cat, policy: policy.withDefaults()}
}

// Match resolves one detected substring. The second return is false when
// the candidate is discarded entirely (no catalog hit and too short to be a
// plausible appliance code).
func (m *Matcher) Match(detected string) (CandidateMatch, bool) {
	code := catalog.NormalizeCode(detected)
	if code == "" {
		return CandidateMatch{}, false
	}

	if entry, ok := m.cat.Lookup(code); ok {
		return CandidateMatch{
			DetectedSubstring: detected,
			NormalizedCode:    code,
			Entry:             entry,
			Tier:              TierHigh,
			Kind:              MatchCatalogExact,
		}, true
	}

	if entry, dist, ok := m.closest(code); ok {
		return CandidateMatch{
			DetectedSubstring: detected,
			NormalizedCode:    code,
			Entry:             entry,
			Tier:              TierMedium,
			Kind:              MatchCatalogFuzzy,
			SimilarityPercent: similarityPercent(code, catalog.NormalizeCode(entry.ModelCode), dist),
		}, true
	}

	if len(code) >= m.policy.MinUnmatchedLength {
		return CandidateMatch{
			DetectedSubstring: detected,
			NormalizedCode:    code,
			Tier:              TierLow,
			Kind:              MatchUnmatched,
		}, true
	}

	return CandidateMatch{}, false
}

// MatchAll resolves every detected substring, dropping discarded candidates.
func (m *Matcher) MatchAll(detected []string) []CandidateMatch {
	var out []CandidateMatch
	for _, d := range detected {
		if cand, ok := m.Match(d); ok {
			out = append(out, cand)
		}
	}
	return out
}

// closest scans all catalog codes in declaration order for the smallest edit
// distance within the policy bound. Ties keep the first entry encountered.
func (m *Matcher) closest(code string) (*catalog.Entry, int, bool) {
	entries := m.cat.Entries()
	best := -1
	bestDist := m.policy.MaxEditDistance + 1
	for i := range entries {
		d := EditDistance(code, catalog.NormalizeCode(entries[i].ModelCode))
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return nil, 0, false
	}
	return &entries[best], bestDist, true
}

func similarityPercent(code, catalogCode string, dist int) int {
	longest := max(len(code), len(catalogCode))
	if longest == 0 {
		return 0
	}
	return int(math.Round((1 - float64(dist)/float64(longest)) * 100))
}
