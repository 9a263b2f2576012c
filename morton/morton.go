// Package morton interleaves the horizontal indices of a voxel into a Z-order key,
// so that voxels close to each other on the map sort close to each other.
package morton

import (
	"fmt"
	"math"
)

type Z = uint64

var (
	masks = [...]uint64{
		0b0101010101010101010101010101010101010101010101010101010101010101,
		0b0011001100110011001100110011001100110011001100110011001100110011,
		0b0000111100001111000011110000111100001111000011110000111100001111,
		0b0000000011111111000000001111111100000000111111110000000011111111,
		0b0000000000000000111111111111111100000000000000001111111111111111,
		0b0000000000000000000000000000000011111111111111111111111111111111,
	}
	shifts = [...]uint{0, 1, 2, 4, 8, 16}
)

// Key interleaves x (even bits) and y (odd bits).
// Both have to fit in 32 bits, otherwise ok is false.
func Key(x, y int64) (z Z, ok bool) {
	if x < 0 || y < 0 || x > math.MaxUint32 || y > math.MaxUint32 {
		return 0, false
	}
	ux, uy := uint64(x), uint64(y)
	for i := 4; i >= 0; i-- {
		ux = (ux | (ux << shifts[i+1])) & masks[i]
		uy = (uy | (uy << shifts[i+1])) & masks[i]
	}
	return ux | (uy << 1), true
}

func mustKey(x, y int64) Z {
	z, ok := Key(x, y)
	if !ok {
		panic(fmt.Errorf(`cannot make a morton key out of %v and %v`, x, y))
	}
	return z
}

// fromKey deinterleaves z back into x and y.
func fromKey(z Z) (x, y int64) {
	ux := z
	uy := z >> 1
	for i := 0; i <= 5; i++ {
		ux = (ux | (ux >> shifts[i])) & masks[i]
		uy = (uy | (uy >> shifts[i])) & masks[i]
	}
	return int64(ux), int64(uy)
}
