package catalog

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// file schema for the yaml catalog.
type catalogFile struct {
	Patterns []patternSpec `yaml:"patterns"`
	Brands   []brandSpec   `yaml:"brands"`
}

type patternSpec struct {
	Expr        string `yaml:"expr"`
	Description string `yaml:"description"`
}

type brandSpec struct {
	Name       string         `yaml:"name"`
	Categories []categorySpec `yaml:"categories"`
}

type categorySpec struct {
	Name   string  `yaml:"name"`
	Models []Entry `yaml:"models"`
}

// LoadFile reads a catalog from a yaml file. Brand, category, and model
// declaration order in the file becomes catalog iteration order.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}
	return Parse(data)
}

// Parse builds a Catalog from yaml bytes.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "catalog: unmarshal yaml")
	}

	patterns := make([]Pattern, 0, len(f.Patterns))
	for _, p := range f.Patterns {
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: compile pattern %q (%s)", p.Expr, p.Description)
		}
		patterns = append(patterns, Pattern{Expr: re, Description: p.Description})
	}

	var entries []Entry
	for _, b := range f.Brands {
		for _, cat := range b.Categories {
			for _, m := range cat.Models {
				m.Brand = b.Name
				m.Category = cat.Name
				entries = append(entries, m)
			}
		}
	}

	c := New(entries, patterns)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
