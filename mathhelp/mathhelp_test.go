package mathhelp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBetweenExc(t *testing.T) {
	tests := []struct {
		f, p, q float64
		want    bool
	}{
		{f: 0, p: -90, q: 90, want: true},
		{f: 90, p: -90, q: 90, want: false},
		{f: -90, p: -90, q: 90, want: false},
		{f: 0, p: 90, q: -90, want: true},
		{f: math.NaN(), p: -90, q: 90, want: false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, BetweenExc(tt.f, tt.p, tt.q), "BetweenExc(%v, %v, %v)", tt.f, tt.p, tt.q)
	}
	assert.True(t, BetweenExc(1, 0, 2))
}

func TestPow2(t *testing.T) {
	assert.Equal(t, 1.0, Pow2(0))
	assert.Equal(t, 262144.0, Pow2(18))
	assert.Equal(t, 33554432.0, Pow2(25))
}

func TestFloorInt(t *testing.T) {
	assert.Equal(t, int64(0), FloorInt(0.5))
	assert.Equal(t, int64(-1), FloorInt(-0.5))
	assert.Equal(t, int64(3), FloorInt(3))
	assert.Equal(t, int64(math.MaxInt64), FloorInt(math.Inf(1)))
	assert.Equal(t, int64(math.MaxInt64), FloorInt(1e300))
	assert.Equal(t, int64(math.MinInt64), FloorInt(math.Inf(-1)))
	assert.Equal(t, int64(0), FloorInt(math.NaN()))
}

func TestFloorDivPow2(t *testing.T) {
	tests := []struct {
		d    int64
		n    uint
		want int64
	}{
		{d: 5, n: 1, want: 2},
		{d: -5, n: 1, want: -3},
		{d: -1, n: 4, want: -1},
		{d: 7, n: 0, want: 7},
		{d: 7, n: 70, want: 0},
		{d: -7, n: 70, want: -1},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, FloorDivPow2(tt.d, tt.n), "FloorDivPow2(%v, %v)", tt.d, tt.n)
	}
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(0))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(-1)))
}
