package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{name: "identical", a: "WAG28461BY", b: "WAG28461BY", expected: 0},
		{name: "single substitution", a: "WAG28461BZ", b: "WAG28461BY", expected: 1},
		{name: "single insertion", a: "WAG28461B", b: "WAG28461BY", expected: 1},
		{name: "single deletion", a: "WAG28461BYX", b: "WAG28461BY", expected: 1},
		{name: "two edits", a: "WAG28461", b: "WAG28461BY", expected: 2},
		{name: "empty against code", a: "", b: "HW80", expected: 4},
		{name: "both empty", a: "", b: "", expected: 0},
		{name: "disjoint strings", a: "ABC", b: "XYZ", expected: 3},
		{name: "symmetric", a: "KGN39VLEB", b: "KGN39VL", expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EditDistance(tt.a, tt.b))
			assert.Equal(t, tt.expected, EditDistance(tt.b, tt.a))
		})
	}
}
