// Package catalog holds the read-only reference dataset of known appliance
// models (brand → category → model code → record) and the extraction
// patterns configured alongside it.
package catalog

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// PartRef points at a commonly replaced part for a model.
type PartRef struct {
	Number string `yaml:"number" json:"number"`
	Name   string `yaml:"name" json:"name"`
}

// Entry is the reference record for one known appliance model.
type Entry struct {
	Brand       string    `yaml:"-" json:"brand"`
	Category    string    `yaml:"-" json:"category"`
	ModelCode   string    `yaml:"code" json:"model_code"`
	DisplayName string    `yaml:"display_name" json:"display_name"`
	DeviceType  string    `yaml:"device_type" json:"device_type"`
	CommonParts []PartRef `yaml:"common_parts,omitempty" json:"common_parts,omitempty"`
}

// Pattern is one model-code extraction rule.
type Pattern struct {
	Expr        *regexp.Regexp
	Description string
}

// Catalog is an immutable reference catalog. Entries preserve declaration
// order; an index keyed by normalized code backs exact lookup. Safe for
// concurrent use once built.
type Catalog struct {
	entries  []Entry
	patterns []Pattern
	index    map[string]*Entry
}

// New builds a Catalog from entries in declaration order. On duplicate
// normalized codes the first declaration wins the index slot, mirroring
// partition iteration order.
func New(entries []Entry, patterns []Pattern) *Catalog {
	c := &Catalog{
		entries:  entries,
		patterns: patterns,
		index:    make(map[string]*Entry, len(entries)),
	}
	for i := range c.entries {
		key := NormalizeCode(c.entries[i].ModelCode)
		if key == "" {
			continue
		}
		if _, exists := c.index[key]; !exists {
			c.index[key] = &c.entries[i]
		}
	}
	return c
}

// Lookup returns the entry whose normalized model code equals code.
func (c *Catalog) Lookup(normalizedCode string) (*Entry, bool) {
	e, ok := c.index[normalizedCode]
	return e, ok
}

// Entries returns all entries in declaration order. Callers must not mutate.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Patterns returns the configured extraction patterns in priority order.
func (c *Catalog) Patterns() []Pattern {
	return c.patterns
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Validate checks catalog invariants: model codes must be non-empty and
// unique within their (brand, category) partition.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.entries))
	for _, e := range c.entries {
		code := NormalizeCode(e.ModelCode)
		if code == "" {
			return eris.Errorf("catalog: empty model code under %s/%s", e.Brand, e.Category)
		}
		key := e.Brand + "\x00" + e.Category + "\x00" + code
		if _, dup := seen[key]; dup {
			return eris.Errorf("catalog: duplicate model code %s in %s/%s", e.ModelCode, e.Brand, e.Category)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// NormalizeCode reduces a model code to uppercase alphanumerics, the
// canonical form used for index lookup and dedup.
func NormalizeCode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
