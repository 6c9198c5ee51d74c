// Package geoutil is a small planar-projection and nearest-neighbor toolkit
// backing the nearestnode debug command.
package geoutil

import "math"

// Point is a 2D planar point, tagged with the dense graph node index it
// represents.
type Point struct {
	NodeIdx    uint32
	Components [2]float64
}

func (p Point) distanceSquared(other Point) float64 {
	dx := p.Components[0] - other.Components[0]
	dy := p.Components[1] - other.Components[1]
	return dx*dx + dy*dy
}

// Distance returns the Euclidean distance between two planar points.
func (p Point) Distance(other Point) float64 {
	return math.Sqrt(p.distanceSquared(other))
}
