package graphbuild

import (
	"testing"

	"github.com/osmroute/osmroute/cellspace"
)

func TestPackCostsAndFlagsRoundTrip(t *testing.T) {
	e := GraphEdge{CostsAndFlags: packCostsAndFlags(120, true)}
	if !e.BackwardsAllowed() {
		t.Fatal("expected backwards allowed")
	}
	if e.Seconds() != 120 {
		t.Fatalf("got %d seconds, want 120", e.Seconds())
	}

	e2 := GraphEdge{CostsAndFlags: packCostsAndFlags(120, false)}
	if e2.BackwardsAllowed() {
		t.Fatal("expected backwards not allowed")
	}
}

func TestPackCostsAndFlagsClampsToFieldCapacity(t *testing.T) {
	e := GraphEdge{CostsAndFlags: packCostsAndFlags(1_000_000, false)}
	if e.Seconds() != MaxEdgeSeconds {
		t.Fatalf("got %d, want clamp to %d", e.Seconds(), MaxEdgeSeconds)
	}

	e = GraphEdge{CostsAndFlags: packCostsAndFlags(-5, false)}
	if e.Seconds() != 1 {
		t.Fatalf("got %d, want clamp to 1", e.Seconds())
	}
}

func TestAddRawEdgeMergesTwoOnewaysIntoBidirectional(t *testing.T) {
	// One way A->B tagged oneway=yes, and a second way B->A also tagged
	// oneway=yes, must dedup into a single edge with backwards_allowed=true.
	result := make(map[[2]int32]rawEdge)
	a, b := int32(1), int32(2)

	polylineAB := []uint64{1, 2, 3}
	addRawEdge(result, a, b, polylineAB, true, 50, 15, 5, "residential", nil)

	polylineBA := []uint64{3, 2, 1}
	addRawEdge(result, b, a, polylineBA, true, 50, 15, 5, "residential", nil)

	if len(result) != 1 {
		t.Fatalf("got %d edges, want 1", len(result))
	}
	e := result[edgeKey(a, b)]
	if !e.backwardsAllowed {
		t.Fatal("expected merged edge to allow backwards travel")
	}
	if e.lo != 1 || e.hi != 2 {
		t.Fatalf("got endpoints (%d,%d), want (1,2)", e.lo, e.hi)
	}
}

func TestAddRawEdgeOnewayAloneDisallowsBackwards(t *testing.T) {
	result := make(map[[2]int32]rawEdge)
	addRawEdge(result, 1, 2, []uint64{1, 2}, true, 50, 15, 5, "residential", nil)

	e := result[edgeKey(1, 2)]
	if e.backwardsAllowed {
		t.Fatal("a lone one-way edge must not allow backwards travel")
	}
}

func TestAddRawEdgeBidirectionalWayAlwaysAllowsBackwards(t *testing.T) {
	result := make(map[[2]int32]rawEdge)
	addRawEdge(result, 1, 2, []uint64{1, 2}, false, 50, 15, 5, "residential", nil)

	e := result[edgeKey(1, 2)]
	if !e.backwardsAllowed {
		t.Fatal("a non-oneway edge must allow backwards travel")
	}
}

func TestAddRawEdgeStoresPolylineCanonicallyOriented(t *testing.T) {
	result := make(map[[2]int32]rawEdge)
	// fromIdx (5) > toIdx (2): segment runs against canonical order, so the
	// stored polyline must be reversed to go from the smaller index (2) to
	// the larger (5).
	addRawEdge(result, 5, 2, []uint64{100, 200, 300}, false, 50, 15, 5, "residential", nil)

	e := result[edgeKey(5, 2)]
	want := []uint64{300, 200, 100}
	if len(e.polyline) != len(want) {
		t.Fatalf("got %v, want %v", e.polyline, want)
	}
	for i := range want {
		if e.polyline[i] != want[i] {
			t.Fatalf("got %v, want %v", e.polyline, want)
		}
	}
}

func TestTravelSecondsPrefersCarThenBikeThenWalk(t *testing.T) {
	carEdge := rawEdge{distanceMeters: 1000, carSpeedKMH: 36}
	if s := travelSeconds(carEdge); s != 100 {
		t.Fatalf("car: got %d seconds, want 100", s)
	}

	bikeOnly := rawEdge{distanceMeters: 1000, bikeSpeedKMH: 36}
	if s := travelSeconds(bikeOnly); s != 100 {
		t.Fatalf("bike fallback: got %d seconds, want 100", s)
	}

	walkOnly := rawEdge{distanceMeters: 100, walkSpeedKMH: 5}
	if s := travelSeconds(walkOnly); s <= 0 {
		t.Fatalf("walk fallback: got non-positive seconds %d", s)
	}
}

func TestOrderEdgesByRepresentativeCellIsDeterministic(t *testing.T) {
	c1 := uint64(cellspace.FromLatLng(10, 10))
	c2 := uint64(cellspace.FromLatLng(-10, -10))

	edges := map[[2]int32]rawEdge{
		{1, 2}: {polyline: []uint64{c1, c1, c1}},
		{3, 4}: {polyline: []uint64{c2, c2, c2}},
	}
	keys := [][2]int32{{1, 2}, {3, 4}}

	order1, err := orderEdgesByRepresentativeCell(keys, edges)
	if err != nil {
		t.Fatal(err)
	}
	order2, err := orderEdgesByRepresentativeCell([][2]int32{{3, 4}, {1, 2}}, edges)
	if err != nil {
		t.Fatal(err)
	}
	if len(order1) != len(order2) {
		t.Fatalf("ordering should not depend on input order: %v vs %v", order1, order2)
	}
	for i := range order1 {
		if order1[i] != order2[i] {
			t.Fatalf("ordering should not depend on input order: %v vs %v", order1, order2)
		}
	}
}

func TestAssignDenseIndicesTieBreaksByOSMID(t *testing.T) {
	c := cellspace.FromLatLng(6.2442, -75.5812)
	nodes := map[int64]osmNode{
		10: {lat: 6.2442, lng: -75.5812},
		5:  {lat: 6.2442, lng: -75.5812},
	}
	intersections := map[int64]bool{10: true, 5: true}

	idx, cellOf, err := assignDenseIndices(intersections, nodes)
	if err != nil {
		t.Fatal(err)
	}
	if idx[5] >= idx[10] {
		t.Fatalf("expected node 5 to sort before node 10 on a tie, got idx[5]=%d idx[10]=%d", idx[5], idx[10])
	}
	if cellOf[5] != c {
		t.Fatalf("unexpected cell for node 5")
	}
}
