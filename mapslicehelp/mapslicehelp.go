package mapslicehelp

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/exp/constraints"
)

// FindLastKeyWithMaxValue returns the newest key holding the maximum value and how many keys hold it.
func FindLastKeyWithMaxValue[K comparable, V constraints.Ordered](m *orderedmap.OrderedMap[K, V]) (maxK K, maxV V, numWinners uint) {
	first := true
	for p := m.Newest(); p != nil; p = p.Prev() {
		if first || p.Value > maxV {
			maxK = p.Key
			maxV = p.Value
			numWinners = 1
			first = false
			continue
		}
		if p.Value == maxV {
			numWinners++
		}
	}
	return
}

// OrderedMapKeys returns the keys oldest first.
func OrderedMapKeys[K comparable, V any](m *orderedmap.OrderedMap[K, V]) []K {
	l := make([]K, m.Len())
	i := 0
	for p := m.Oldest(); p != nil; p = p.Next() {
		l[i] = p.Key
		i++
	}
	return l
}

// SumVals adds up all values.
func SumVals[K comparable, V constraints.Integer | constraints.Float](m *orderedmap.OrderedMap[K, V]) V {
	var sum V
	for p := m.Oldest(); p != nil; p = p.Next() {
		sum += p.Value
	}
	return sum
}
