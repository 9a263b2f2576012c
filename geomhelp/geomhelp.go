package geomhelp

import (
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkt"
	"github.com/muesli/reflow/truncate"
)

// ExtentPolygon returns the extent as a counterclockwise polygon starting at the south west corner.
func ExtentPolygon(e geom.Extent) geom.Polygon {
	return geom.Polygon{{
		{e[0], e[1]},
		{e[2], e[1]},
		{e[2], e[3]},
		{e[0], e[3]},
	}}
}

const tail = "..."

// WktMustEncode encodes g as WKT of at most maxLen characters. Zero means no limit.
// A cut off WKT ends in "...", unless maxLen leaves no room for more than the dots.
func WktMustEncode(g geom.Geometry, maxLen uint) string {
	s := wkt.MustEncode(g)
	switch {
	case maxLen == 0 || uint(len(s)) <= maxLen:
		return s
	case maxLen <= uint(len(tail)):
		return truncate.String(s, maxLen)
	}
	return truncate.StringWithTail(s, maxLen, tail)
}
