package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransform strips combining marks so accented label text (umlauts on
// European nameplates, mostly) survives the ASCII filter below.
var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText canonicalizes recognizer output: uppercase, with every
// character outside [A-Z0-9 \-/.():] replaced by a space. Total and
// idempotent; empty input yields empty output.
func NormalizeText(raw string) string {
	folded, _, err := transform.String(foldTransform, raw)
	if err != nil {
		folded = raw
	}
	upper := strings.ToUpper(folded)

	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '/', r == '.', r == '(', r == ')', r == ':':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}
