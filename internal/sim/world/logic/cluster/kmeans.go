// Package cluster implements the Lloyd k-means used to redistribute resource
// cells into patches. It is deterministic for a given input order and random
// source.
package cluster

import "errors"

const DefaultMaxIter = 100

var ErrTooFewPoints = errors.New("cluster: fewer points than clusters")

type Point struct {
	X, Y float64
}

// Rand is the subset of the simulation random source needed for seeding.
type Rand interface {
	IntN(n int) int
}

type Result struct {
	Centroids  []Point
	Assign     []int // index into Centroids, per input point
	Iterations int
}

// KMeans seeds k centroids from distinct random input points, then
// alternates assignment and mean update until no assignment changes or
// maxIter rounds have run. A cluster that loses all its points keeps its
// previous centroid.
func KMeans(points []Point, k int, rng Rand, maxIter int) (Result, error) {
	if k <= 0 || len(points) < k {
		return Result{}, ErrTooFewPoints
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}

	// Partial Fisher-Yates over indices.
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	centroids := make([]Point, k)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		centroids[i] = points[idx[i]]
	}

	assign := make([]int, len(points))
	for i := range assign {
		assign[i] = -1
	}
	iter := 0
	for iter < maxIter {
		iter++
		changed := false
		for i, p := range points {
			best := nearest(p, centroids)
			if best != assign[i] {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		sums := make([]Point, k)
		counts := make([]int, k)
		for i, p := range points {
			c := assign[i]
			sums[c].X += p.X
			sums[c].Y += p.Y
			counts[c]++
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			centroids[c] = Point{X: sums[c].X / float64(counts[c]), Y: sums[c].Y / float64(counts[c])}
		}
	}
	return Result{Centroids: centroids, Assign: assign, Iterations: iter}, nil
}

// nearest returns the closest centroid by squared distance; ties go to the lower index.
func nearest(p Point, centroids []Point) int {
	best := 0
	bestD := dist2(p, centroids[0])
	for i := 1; i < len(centroids); i++ {
		if d := dist2(p, centroids[i]); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func dist2(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}
