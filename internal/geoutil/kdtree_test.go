package geoutil

import (
	"math"
	"testing"
)

func TestFindNearestPicksClosestPoint(t *testing.T) {
	points := []Point{
		{NodeIdx: 0, Components: [2]float64{0, 0}},
		{NodeIdx: 1, Components: [2]float64{10, 10}},
		{NodeIdx: 2, Components: [2]float64{100, 100}},
	}
	tree := Build(points)

	best, dist := tree.FindNearest(Point{Components: [2]float64{9, 11}})
	if best.NodeIdx != 1 {
		t.Fatalf("got node %d, want 1", best.NodeIdx)
	}
	if dist <= 0 {
		t.Fatalf("expected a positive distance, got %f", dist)
	}
}

func TestFindNearestOnEmptyTree(t *testing.T) {
	tree := Build(nil)
	_, dist := tree.FindNearest(Point{})
	if !math.IsInf(dist, 1) {
		t.Fatalf("expected +Inf distance on an empty tree, got %f", dist)
	}
}

func TestLatLngToMetersMapsLongitudeToXAndLatitudeToY(t *testing.T) {
	x1, y1 := LatLngToMeters(6.2442, -75.5812)
	x2, y2 := LatLngToMeters(6.2443, -75.5812)
	if x1 != x2 {
		t.Fatalf("same longitude should project to the same x, got %f vs %f", x1, x2)
	}
	if y1 == y2 {
		t.Fatal("different latitudes should project to different y")
	}
}
