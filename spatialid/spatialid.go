// Package spatialid computes spatial IDs: the address z/f/x/y of the voxel
// a longitude, latitude and altitude fall into at a given zoom level.
//
// Horizontally the voxel grid is the web mercator tile grid (2^z columns and rows).
// Vertically there are 2^25 voxels of about one meter at the reference zoom 25,
// and the vertical resolution halves with every zoom level above it, exactly like the horizontal one.
package spatialid

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdok/spatialid/mathhelp"
)

const (
	// ReferenceZoom is the zoom level where a vertical voxel is (about) one meter high.
	ReferenceZoom uint = 25
	// MaxZoom is the deepest zoom Locate accepts, X and Y still fit a 32 bit morton half there.
	MaxZoom uint = 32
	labelSeparator     = "/"
)

// VerticalResolution is H, the number of vertical voxels at the reference zoom.
var VerticalResolution = mathhelp.Pow2(ReferenceZoom)

var (
	ErrInvalidLatitude = errors.New("latitude must be strictly between -90 and 90 degrees")
	ErrMalformedLabel  = errors.New("malformed spatial id label")
	ErrInvalidZoom     = fmt.Errorf("zoom must be at most %d", MaxZoom)
)

// ID is a spatial ID. F, X and Y are signed:
// F is negative below the reference datum and Y leaves [0, 2^Z) beyond the mercator latitudes.
type ID struct {
	Z uint  `json:"z" yaml:"z"`
	F int64 `json:"f" yaml:"f"`
	X int64 `json:"x" yaml:"x"`
	Y int64 `json:"y" yaml:"y"`
}

// Compute returns the ID of the voxel containing (lng, lat, alt) at the given zoom.
// lng is in degrees [-180, 180], alt in meters above the reference datum.
// lat must be strictly inside (-90, 90): at the poles tan and sec diverge
// and the result is undefined. Use Locate to have that checked.
func Compute(lng, lat, alt float64, zoom uint) ID {
	latRad := lat * math.Pi / 180
	n := mathhelp.Pow2(zoom)
	return ID{
		Z: zoom,
		F: mathhelp.FloorInt((n * alt) / VerticalResolution),
		X: mathhelp.FloorInt(n * ((lng + 180) / 360)),
		Y: mathhelp.FloorInt((n / 2) * (1 - mercator(latRad)/math.Pi)),
	}
}

// mercator is ln(tan(φ) + sec(φ)). Close to the south pole tan and sec cancel out
// in float64 and the result is -Inf (or NaN).
func mercator(latRad float64) float64 {
	return math.Log(math.Tan(latRad) + 1/math.Cos(latRad))
}

// Locate is Compute with its preconditions checked. Latitudes must lie strictly
// inside (-90, 90) and must still project to a finite mercator value, which
// rules out about the last 1e-7 degree before the south pole.
// Latitudes just inside the north pole are accepted, their Y can be far below 0.
func Locate(lng, lat, alt float64, zoom uint) (ID, error) {
	if !mathhelp.BetweenExc(lat, -90, 90) || !mathhelp.IsFinite(mercator(lat*math.Pi/180)) {
		return ID{}, fmt.Errorf("%w: %v", ErrInvalidLatitude, lat)
	}
	if zoom > MaxZoom {
		return ID{}, fmt.Errorf("%w: %d", ErrInvalidZoom, zoom)
	}
	return Compute(lng, lat, alt, zoom), nil
}

// MustLocate is Locate, panicking on invalid input.
func MustLocate(lng, lat, alt float64, zoom uint) ID {
	id, err := Locate(lng, lat, alt, zoom)
	if err != nil {
		panic(err)
	}
	return id
}

// String formats the ID as its label: "{z}/{f}/{x}/{y}".
func (id ID) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(id.Z), 10))
	for _, i := range [...]int64{id.F, id.X, id.Y} {
		sb.WriteString(labelSeparator)
		sb.WriteString(strconv.FormatInt(i, 10))
	}
	return sb.String()
}

// Parse reads a label as produced by ID.String.
func Parse(label string) (ID, error) {
	parts := strings.Split(strings.TrimSpace(label), labelSeparator)
	if len(parts) != 4 {
		return ID{}, fmt.Errorf("%w: %q should have 4 parts, has %d", ErrMalformedLabel, label, len(parts))
	}
	z, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return ID{}, fmt.Errorf("%w: zoom of %q: %w", ErrMalformedLabel, label, err)
	}
	var ints [3]int64
	for i, part := range parts[1:] {
		ints[i], err = strconv.ParseInt(part, 10, 64)
		if err != nil {
			return ID{}, fmt.Errorf("%w: index %d of %q: %w", ErrMalformedLabel, i+1, label, err)
		}
	}
	return ID{Z: uint(z), F: ints[0], X: ints[1], Y: ints[2]}, nil
}

// Parent returns the voxel at a zoom level (<= id.Z) that contains this one.
func (id ID) Parent(zoom uint) (ID, bool) {
	if zoom > id.Z {
		return ID{}, false
	}
	d := id.Z - zoom
	return ID{
		Z: zoom,
		F: mathhelp.FloorDivPow2(id.F, d),
		X: mathhelp.FloorDivPow2(id.X, d),
		Y: mathhelp.FloorDivPow2(id.Y, d),
	}, true
}

// InGrid reports whether X and Y lie within the 2^Z by 2^Z horizontal grid.
func (id ID) InGrid() bool {
	n := mathhelp.Pow2(id.Z)
	return id.X >= 0 && id.Y >= 0 && float64(id.X) < n && float64(id.Y) < n
}
