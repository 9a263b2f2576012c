package camerasync

import (
	"cmp"
	"slices"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/pdok/spatialid/mapslicehelp"
	"github.com/pdok/spatialid/spatialid"
)

// Trail records the distinct voxels the drone passed through, in order of first visit.
type Trail struct {
	mu     sync.Mutex
	visits *orderedmap.OrderedMap[spatialid.ID, int]
}

func NewTrail() *Trail {
	return &Trail{visits: orderedmap.New[spatialid.ID, int]()}
}

func (t *Trail) Add(id spatialid.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	count, _ := t.visits.Get(id)
	t.visits.Set(id, count+1)
}

// Len is the number of distinct voxels.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visits.Len()
}

// Visits is the total number of voxel visits, repeated ones included.
func (t *Trail) Visits() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return mapslicehelp.SumVals(t.visits)
}

func (t *Trail) Count(id spatialid.ID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count, _ := t.visits.Get(id)
	return count
}

// IDs returns the distinct voxels in order of first visit.
func (t *Trail) IDs() []spatialid.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return mapslicehelp.OrderedMapKeys(t.visits)
}

// MostVisited returns the voxel visited most often; on a tie the one first visited latest.
func (t *Trail) MostVisited() (id spatialid.ID, count int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, count, winners := mapslicehelp.FindLastKeyWithMaxValue(t.visits)
	return id, count, winners > 0
}

// Sorted returns the distinct voxels by zoom, then in Z-order of their horizontal cell, then by height.
// Voxels outside the horizontal grid come after the others of their zoom.
func (t *Trail) Sorted() []spatialid.ID {
	ids := t.IDs()
	slices.SortFunc(ids, func(a, b spatialid.ID) int {
		if c := cmp.Compare(a.Z, b.Z); c != 0 {
			return c
		}
		ka, okA := a.MortonKey()
		kb, okB := b.MortonKey()
		switch {
		case okA && !okB:
			return -1
		case !okA && okB:
			return 1
		case okA && okB:
			if c := cmp.Compare(ka, kb); c != 0 {
				return c
			}
		default:
			if c := cmp.Compare(a.Y, b.Y); c != 0 {
				return c
			}
			if c := cmp.Compare(a.X, b.X); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.F, b.F)
	})
	return ids
}
