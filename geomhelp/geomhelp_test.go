package geomhelp

import (
	"strings"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtentPolygon(t *testing.T) {
	got := ExtentPolygon(geom.Extent{0, 10, 1, 11})
	require.Len(t, got, 1)
	assert.Equal(t, [][2]float64{{0, 10}, {1, 10}, {1, 11}, {0, 11}}, got[0])
}

func TestWktMustEncode(t *testing.T) {
	p := ExtentPolygon(geom.Extent{139.11, 36.08, 139.12, 36.09})
	full := WktMustEncode(p, 0)
	require.True(t, strings.HasPrefix(full, "POLYGON"), full)
	assert.Contains(t, full, "139.11 36.08")

	tests := []struct {
		name   string
		maxLen uint
		want   string
	}{
		{name: "one", maxLen: 1, want: "P"},
		{name: "two", maxLen: 2, want: "PO"},
		{name: "dots only", maxLen: 3, want: "POL"},
		{name: "short", maxLen: 10, want: "POLYGON..."},
		{name: "one less", maxLen: uint(len(full)) - 1, want: full[:len(full)-4] + "..."},
		{name: "exact", maxLen: uint(len(full)), want: full},
		{name: "long", maxLen: 1000, want: full},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WktMustEncode(p, tt.maxLen)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), int(tt.maxLen))
		})
	}
}
