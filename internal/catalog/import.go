package catalog

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"
)

// XLSX vendor sheets carry one model per row:
//
//	brand | category | code | display_name | device_type | parts
//
// where parts is a semicolon list of "number:name" pairs. The first row is
// assumed to be a header and skipped.

// ImportXLSX reads catalog entries from a vendor spreadsheet.
func ImportXLSX(path string) ([]Entry, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("catalog: xlsx %s has no sheets", path)
	}

	var entries []Entry
	for i, row := range f.Sheets[0].Rows {
		if i == 0 {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = strings.TrimSpace(c.Value)
		}
		if len(cells) < 3 || cells[2] == "" {
			continue
		}
		e := Entry{
			Brand:     cells[0],
			Category:  cells[1],
			ModelCode: cells[2],
		}
		if len(cells) > 3 {
			e.DisplayName = cells[3]
		}
		if len(cells) > 4 {
			e.DeviceType = cells[4]
		}
		if len(cells) > 5 {
			e.CommonParts = parseParts(cells[5])
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseParts(s string) []PartRef {
	var parts []PartRef
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		num, name, _ := strings.Cut(item, ":")
		parts = append(parts, PartRef{Number: strings.TrimSpace(num), Name: strings.TrimSpace(name)})
	}
	return parts
}

// WriteFile serializes entries (grouped back into brand/category nesting,
// preserving first-seen order) plus pattern specs to a yaml catalog file.
func WriteFile(path string, entries []Entry, patterns []patternSpec) error {
	var f catalogFile
	f.Patterns = patterns

	brandIdx := make(map[string]int)
	for _, e := range entries {
		bi, ok := brandIdx[e.Brand]
		if !ok {
			f.Brands = append(f.Brands, brandSpec{Name: e.Brand})
			bi = len(f.Brands) - 1
			brandIdx[e.Brand] = bi
		}
		b := &f.Brands[bi]

		ci := -1
		for j := range b.Categories {
			if b.Categories[j].Name == e.Category {
				ci = j
				break
			}
		}
		if ci < 0 {
			b.Categories = append(b.Categories, categorySpec{Name: e.Category})
			ci = len(b.Categories) - 1
		}
		b.Categories[ci].Models = append(b.Categories[ci].Models, e)
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return eris.Wrap(err, "catalog: marshal yaml")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "catalog: write %s", path)
	}
	return nil
}
