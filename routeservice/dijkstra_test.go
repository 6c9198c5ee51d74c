package routeservice

import (
	"context"
	"testing"

	"github.com/osmroute/osmroute/graphbuild"
)

// buildTestGraph constructs a small diamond: nodes 0-1-2-3 with edges
//
//	0: node0--node1 (edge 0)
//	1: node1--node2 (edge 1, cheap)
//	2: node1--node3 (edge 2, expensive)
//	3: node2--node3 (edge 3)
//
// giving two node1->node3 routes (via edge1+edge3, or edge2 directly), and
// a shared intersection at node1 with a traffic light.
func buildTestGraph() graphbuild.GraphBlob {
	edges := []graphbuild.GraphEdge{
		{Endpoint1: 0, Endpoint2: 1, CostsAndFlags: encodeCF(10, true)}, // edge 0
		{Endpoint1: 1, Endpoint2: 2, CostsAndFlags: encodeCF(5, true)},  // edge 1
		{Endpoint1: 1, Endpoint2: 3, CostsAndFlags: encodeCF(50, true)}, // edge 2
		{Endpoint1: 2, Endpoint2: 3, CostsAndFlags: encodeCF(5, true)},  // edge 3
	}

	none := graphbuild.Interaction{Incoming: 0, Outgoing: 0}
	light := graphbuild.Interaction{Incoming: 3, Outgoing: 3}

	nodes := []graphbuild.GraphNode{
		{IncidentEdges: []uint32{0}, Interactions: []graphbuild.Interaction{none}},
		{IncidentEdges: []uint32{0, 1, 2}, Interactions: []graphbuild.Interaction{none, light, light}},
		{IncidentEdges: []uint32{1, 3}, Interactions: []graphbuild.Interaction{none, none}},
		{IncidentEdges: []uint32{2, 3}, Interactions: []graphbuild.Interaction{none, none}},
	}

	return graphbuild.GraphBlob{Nodes: nodes, Edges: edges}
}

func encodeCF(seconds int, backwardsAllowed bool) uint16 {
	v := uint16(seconds) << 3
	if backwardsAllowed {
		v |= 1
	}
	return v
}

func TestShortestPathPrefersLowerCostRoute(t *testing.T) {
	g := buildTestGraph()
	p, err := shortestPath(context.Background(), &g, 0, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	// edge0 -> edge1 -> edge3 (5+turn+5+turn) should beat edge0 -> edge2 (50+turn);
	// the start edge's own cost is not charged.
	want := []uint32{0, 1, 3}
	if len(p.Edges) != len(want) {
		t.Fatalf("got %v, want %v", p.Edges, want)
	}
	for i := range want {
		if p.Edges[i] != want[i] {
			t.Fatalf("got %v, want %v", p.Edges, want)
		}
	}
}

func TestShortestPathTrivialSameEdge(t *testing.T) {
	g := buildTestGraph()
	p, err := shortestPath(context.Background(), &g, 1, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Edges) != 1 || p.Edges[0] != 1 {
		t.Fatalf("got %v, want [1]", p.Edges)
	}
	if len(p.Nodes) != 0 {
		t.Fatalf("trivial path should have no shared nodes, got %v", p.Nodes)
	}
}

func TestShortestPathHonorsAvoidSetExceptTarget(t *testing.T) {
	g := buildTestGraph()
	avoid := map[uint32]bool{1: true, 3: true}
	p, err := shortestPath(context.Background(), &g, 0, 3, avoid)
	if err != nil {
		t.Fatal(err)
	}
	// edge1 and edge3 are avoided (edge3 is the target so it's still usable);
	// only edge0 -> edge2 -> edge3 remains.
	want := []uint32{0, 2, 3}
	if len(p.Edges) != len(want) {
		t.Fatalf("got %v, want %v", p.Edges, want)
	}
}

func TestShortestPathNoRouteReturnsEmptyNotError(t *testing.T) {
	g := buildTestGraph()
	g.Nodes = append(g.Nodes, graphbuild.GraphNode{}) // node 4: isolated
	g.Edges = append(g.Edges, graphbuild.GraphEdge{Endpoint1: 4, Endpoint2: 4, CostsAndFlags: encodeCF(1, true)})

	p, err := shortestPath(context.Background(), &g, 0, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Edges) != 0 {
		t.Fatalf("expected no path, got %v", p.Edges)
	}
}

func TestSlotInteractionCostFallsBackToZeroWhenEdgeNotInNodeSlots(t *testing.T) {
	g := buildTestGraph()
	if c := slotInteractionCost(&g, 0, 99); c != 0 {
		t.Fatalf("got %d, want 0 for an edge absent from the node's incident list", c)
	}
}

func TestInteractionCostTable(t *testing.T) {
	cases := map[uint8]uint32{0: 2, 1: 4, 2: 8, 3: 32, 9: 0}
	for signal, want := range cases {
		if got := interactionCost(signal); got != want {
			t.Fatalf("signal %d: got %d, want %d", signal, got, want)
		}
	}
}
