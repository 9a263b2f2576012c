package mathhelp

import (
	"math"

	"golang.org/x/exp/constraints"
)

// BetweenExc reports whether f lies strictly between p and q, in either order.
func BetweenExc[T constraints.Integer | constraints.Float](f, p, q T) bool {
	if p <= q {
		return p < f && f < q
	}
	return q < f && f < p
}

// Pow2 returns 2^n as a float, so that grid sizes of deep zoom levels don't overflow.
func Pow2(n uint) float64 {
	return math.Ldexp(1, int(n))
}

// FloorInt floors f and converts the result to an int64, saturating at the int64 range.
// NaN gives 0.
func FloorInt(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(math.Floor(f))
}

// IsFinite is the negation of math.IsNaN(f) || math.IsInf(f, 0).
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FloorDivPow2 divides d by 2^n, rounding towards negative infinity.
func FloorDivPow2(d int64, n uint) int64 {
	if n >= 63 {
		if d < 0 {
			return -1
		}
		return 0
	}
	return d >> n // arithmetic shift floors for negatives too
}
