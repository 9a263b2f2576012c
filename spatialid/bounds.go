package spatialid

import (
	"math"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"

	"github.com/pdok/spatialid/mathhelp"
	"github.com/pdok/spatialid/morton"
)

// Bounds is the space a voxel covers.
// The west, north and bottom edges are inclusive, the others exclusive
// (rows are counted from the north).
type Bounds struct {
	Extent geom.Extent // lng/lat degrees
	MinAlt float64
	MaxAlt float64
}

// Bounds inverts Compute.
func (id ID) Bounds() Bounds {
	n := mathhelp.Pow2(id.Z)
	return Bounds{
		Extent: geom.Extent{
			lngOfColumn(id.X, n),
			latOfRow(id.Y+1, n),
			lngOfColumn(id.X+1, n),
			latOfRow(id.Y, n),
		},
		MinAlt: float64(id.F) * VerticalResolution / n,
		MaxAlt: float64(id.F+1) * VerticalResolution / n,
	}
}

// Centroid is the center of the voxel, the vertical one in meters.
func (b Bounds) Centroid() (lng, lat, alt float64) {
	return b.Extent.MinX() + b.Extent.XSpan()/2,
		b.Extent.MinY() + b.Extent.YSpan()/2,
		b.MinAlt + (b.MaxAlt-b.MinAlt)/2
}

// Contains checks whether a position falls inside, respecting the exclusive edges.
func (b Bounds) Contains(lng, lat, alt float64) bool {
	return b.Extent.MinX() <= lng && lng < b.Extent.MaxX() &&
		b.Extent.MinY() < lat && lat <= b.Extent.MaxY() &&
		b.MinAlt <= alt && alt < b.MaxAlt
}

func lngOfColumn(x int64, n float64) float64 {
	return float64(x)/n*360 - 180
}

func latOfRow(y int64, n float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(1-2*float64(y)/n))) * 180 / math.Pi
}

// Tile returns the slippy map tile with the same horizontal footprint.
func (id ID) Tile() (*slippy.Tile, bool) {
	if !id.InGrid() {
		return nil, false
	}
	return slippy.NewTile(id.Z, uint(id.X), uint(id.Y)), true
}

// MortonKey returns the Z-order key of the horizontal indices.
func (id ID) MortonKey() (morton.Z, bool) {
	if !id.InGrid() {
		return 0, false
	}
	return morton.Key(id.X, id.Y)
}
