package engine

import "sort"

// RankAndDedup collapses duplicate candidates (same normalized code, first
// occurrence wins its tier) and stable-sorts descending by confidence tier.
// First-seen ordering — extraction order, which is pattern-priority order —
// is preserved within each tier.
func RankAndDedup(candidates []CandidateMatch) []CandidateMatch {
	seen := make(map[string]struct{}, len(candidates))
	deduped := make([]CandidateMatch, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.NormalizedCode]; dup {
			continue
		}
		seen[c.NormalizedCode] = struct{}{}
		deduped = append(deduped, c)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Tier > deduped[j].Tier
	})
	return deduped
}
