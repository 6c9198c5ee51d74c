package geoutil

import (
	"math"
	"sort"
)

// KDTree is a 2D k-d tree over graph node positions, used by the
// nearestnode debug command to find the node closest to an arbitrary
// coordinate without scanning every node.
type KDTree struct {
	root *node
}

type node struct {
	p    Point
	l, r *node
}

// Build constructs a KDTree from points. points is sorted in place.
func Build(points []Point) *KDTree {
	return &KDTree{root: build(points, 0)}
}

func build(points []Point, depth int) *node {
	if len(points) == 0 {
		return nil
	}
	axis := depth % 2
	sort.Slice(points, func(i, j int) bool {
		return points[i].Components[axis] < points[j].Components[axis]
	})

	mid := len(points) / 2
	return &node{
		p: points[mid],
		l: build(points[:mid], depth+1),
		r: build(points[mid+1:], depth+1),
	}
}

// FindNearest returns the point in t closest to target and its distance.
// Calling it on an empty tree returns the zero Point and +Inf.
func (t *KDTree) FindNearest(target Point) (Point, float64) {
	if t.root == nil {
		return Point{}, math.Inf(1)
	}
	best, bestSq := nearest(t.root, target, 0, nil, math.MaxFloat64)
	return best.p, math.Sqrt(bestSq)
}

func nearest(n *node, target Point, depth int, best *node, bestSq float64) (*node, float64) {
	if n == nil {
		return best, bestSq
	}
	if d := n.p.distanceSquared(target); d < bestSq {
		bestSq, best = d, n
	}

	axis := depth % 2
	next, other := n.l, n.r
	if target.Components[axis] >= n.p.Components[axis] {
		next, other = n.r, n.l
	}

	best, bestSq = nearest(next, target, depth+1, best, bestSq)
	if diff := n.p.Components[axis] - target.Components[axis]; diff*diff < bestSq {
		best, bestSq = nearest(other, target, depth+1, best, bestSq)
	}
	return best, bestSq
}
