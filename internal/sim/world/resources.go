package world

import (
	"sort"

	"colony.ai/internal/sim/world/logic/cluster"
	"colony.ai/internal/sim/world/logic/mathx"
)

// QuantityDist is the normal distribution unit counts are drawn from.
type QuantityDist struct {
	Mean  float64
	Stdev float64
}

// ResourceLookup is the read-only face of the resource store handed to bots.
type ResourceLookup interface {
	Has(p Pos) bool
}

// ResourceStore maps cells to their remaining unit count. Entries never hold
// a non-positive quantity.
type ResourceStore struct {
	cells map[Pos]int
}

func NewResourceStore() *ResourceStore {
	return &ResourceStore{cells: map[Pos]int{}}
}

// Init seeds the field row-major: each cell outside the storage exclusion
// band becomes a resource with probability density, holding a normally
// distributed, rounded unit count. Non-positive draws are dropped.
func (s *ResourceStore) Init(f Field, density float64, dist QuantityDist, rng *RandomSource) {
	s.cells = map[Pos]int{}
	for x := 0; x < f.Width; x++ {
		for y := 0; y < f.Height; y++ {
			p := Pos{X: x, Y: y}
			if f.excluded(p) {
				continue
			}
			if !rng.Chance(density) {
				continue
			}
			if q := rng.Normal(dist.Mean, dist.Stdev); q > 0 {
				s.cells[p] = q
			}
		}
	}
}

// Decluster pulls every resource cell toward the centroid of its k-means
// cluster: the whole quantity moves to pos - floor((pos-centroid)/1.5) per
// axis and accumulates there. It is a no-op with fewer distinct cells than
// clusters. A destination on the storage cell leaves the quantity in place.
func (s *ResourceStore) Decluster(f Field, k int, rng *RandomSource) bool {
	if k <= 0 || len(s.cells) < k {
		return false
	}
	cells := s.sortedCells()
	points := make([]cluster.Point, len(cells))
	for i, p := range cells {
		points[i] = cluster.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	res, err := cluster.KMeans(points, k, rng, cluster.DefaultMaxIter)
	if err != nil {
		return false
	}

	storage := f.Storage()
	next := make(map[Pos]int, len(cells))
	for i, p := range cells {
		c := res.Centroids[res.Assign[i]]
		dst := Pos{
			X: p.X - mathx.FloorDivF(float64(p.X)-c.X, 1.5),
			Y: p.Y - mathx.FloorDivF(float64(p.Y)-c.Y, 1.5),
		}
		if dst == storage || !f.Contains(dst) {
			dst = p
		}
		next[dst] += s.cells[p]
	}
	for p, q := range next {
		if q <= 0 {
			delete(next, p)
		}
	}
	s.cells = next
	return true
}

func (s *ResourceStore) Has(p Pos) bool {
	return s.cells[p] > 0
}

func (s *ResourceStore) Quantity(p Pos) int {
	return s.cells[p]
}

// Set stores q units at p; q <= 0 removes the entry.
func (s *ResourceStore) Set(p Pos, q int) {
	if q <= 0 {
		delete(s.cells, p)
		return
	}
	s.cells[p] = q
}

// ConsumeOne takes a single unit from p and reports whether one was there.
func (s *ResourceStore) ConsumeOne(p Pos) bool {
	q, ok := s.cells[p]
	if !ok || q <= 0 {
		return false
	}
	if q == 1 {
		delete(s.cells, p)
	} else {
		s.cells[p] = q - 1
	}
	return true
}

func (s *ResourceStore) Len() int { return len(s.cells) }

// Total is the number of units left on the field.
func (s *ResourceStore) Total() int {
	n := 0
	for _, q := range s.cells {
		n += q
	}
	return n
}

// Cells returns a copy of the cell map.
func (s *ResourceStore) Cells() map[Pos]int {
	out := make(map[Pos]int, len(s.cells))
	for p, q := range s.cells {
		out[p] = q
	}
	return out
}

func (s *ResourceStore) sortedCells() []Pos {
	return sortedKeys(s.cells)
}

func sortedKeys(m map[Pos]int) []Pos {
	keys := make([]Pos, 0, len(m))
	for p := range m {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		return keys[i].Y < keys[j].Y
	})
	return keys
}
