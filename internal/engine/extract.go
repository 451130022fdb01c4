package engine

import (
	"regexp"

	"github.com/fieldserve/nameplate-cli/internal/catalog"
)

// fallbackPattern matches the generic alphanumeric appliance-code shape:
// 2-4 letters, 4-8 digits, up to 4 trailing letters. It is appended after
// the catalog-configured patterns on every scan.
var fallbackPattern = catalog.Pattern{
	Expr:        regexp.MustCompile(`[A-Z]{2,4}[0-9]{4,8}[A-Z]{0,4}`),
	Description: "generic appliance model code",
}

// Extract applies each pattern to the normalized text in order and returns
// all non-overlapping matches, pattern-priority first. The same text is
// scanned once per pattern; matches from later patterns follow all matches
// from earlier ones. Duplicate and overlapping substrings are kept — dedup
// happens downstream by normalized code.
func Extract(normalizedText string, patterns []catalog.Pattern) []string {
	if normalizedText == "" {
		return nil
	}

	var out []string
	for _, p := range append(append([]catalog.Pattern(nil), patterns...), fallbackPattern) {
		out = append(out, p.Expr.FindAllString(normalizedText, -1)...)
	}
	return out
}
