package routeservice

import (
	"context"
	"fmt"

	"github.com/osmroute/osmroute/graphbuild"
	"github.com/osmroute/osmroute/internal/apierr"
)

// interactionCost is the turn-cost table: a closed mapping from the
// outgoing traffic-control signal experienced at the shared node to a u32
// cost in seconds-equivalent units.
func interactionCost(outgoing uint8) uint32 {
	switch outgoing {
	case 0: // None
		return 2
	case 1: // Yield
		return 4
	case 2: // StopSign
		return 8
	case 3: // TrafficLight
		return 32
	default:
		return 0
	}
}

// slotInteractionCost looks up n's incident-edge slot for inEdge and returns
// the cost of its Outgoing signal. A missing slot (the edge does not appear
// in n's incident_edges, which happens when a one-way edge is left at its
// Endpoint2) resolves to 0 — distinct from a
// present-but-None slot, which costs 2.
func slotInteractionCost(graph *graphbuild.GraphBlob, n uint32, inEdge uint32) uint32 {
	node := graph.Nodes[n]
	for i, e := range node.IncidentEdges {
		if e == inEdge {
			return interactionCost(uint8(node.Interactions[i].Outgoing))
		}
	}
	return 0
}

// successor is one edge-dual neighbor of an edge: the next edge to enter,
// reached through shared road-graph node node.
type successor struct {
	edge uint32
	node uint32
}

// successorsOf enumerates the legal edge-dual neighbors of cur: Endpoint2 is
// always a legal continuation (forward traversal is always allowed);
// Endpoint1 is legal only if cur allows backwards travel. From whichever
// endpoint is reached, the node's own incident_edges are already legal
// starting points by construction, so no further legality check is needed
// there.
func successorsOf(graph *graphbuild.GraphBlob, cur uint32) []successor {
	e := graph.Edges[cur]
	var out []successor

	appendFrom := func(n uint32) {
		for _, adj := range graph.Nodes[n].IncidentEdges {
			if adj != cur {
				out = append(out, successor{edge: adj, node: n})
			}
		}
	}

	appendFrom(e.Endpoint2)
	if e.BackwardsAllowed() {
		appendFrom(e.Endpoint1)
	}
	return out
}

// prevInfo records, for each edge-dual node Dijkstra has improved, the edge
// and shared road-graph node that preceded it on the best known path.
type prevInfo struct {
	edge, node uint32
}

// shortestPath runs a single Dijkstra pass over the edge-dual from start to
// end, skipping any edge in avoid except end itself. It checks ctx for
// cancellation every deadlineCheckInterval pops.
func shortestPath(ctx context.Context, graph *graphbuild.GraphBlob, start, end uint32, avoid map[uint32]bool) (Path, error) {
	if int(start) >= len(graph.Edges) || int(end) >= len(graph.Edges) {
		return Path{}, apierr.Wrap(apierr.OutOfRange, fmt.Errorf("routeservice: edge index out of range"))
	}

	dist := map[uint32]uint32{start: 0}
	prev := map[uint32]prevInfo{}
	visited := edgeSet{}

	pq := &frontier{}
	pq.Push(frontierItem{edge: start, cost: 0})

	pops := 0
	for !pq.IsEmpty() {
		pops++
		if pops%deadlineCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Path{}, apierr.Wrap(apierr.DeadlineExceeded, err)
			}
		}

		cur := pq.Pop()
		if best, ok := dist[cur.edge]; ok && cur.cost > best {
			continue // stale entry, a cheaper path already settled this edge
		}
		if visited.has(cur.edge) {
			continue
		}
		visited.add(cur.edge)

		if cur.edge == end {
			return reconstructPath(start, end, prev), nil
		}

		for _, succ := range successorsOf(graph, cur.edge) {
			if avoid[succ.edge] && succ.edge != end {
				continue
			}
			edgeCost := graph.Edges[succ.edge].Seconds()
			turnCost := slotInteractionCost(graph, succ.node, cur.edge)
			next := saturatingAdd(cur.cost, saturatingAdd(edgeCost, turnCost))

			if existing, ok := dist[succ.edge]; !ok || next < existing {
				dist[succ.edge] = next
				prev[succ.edge] = prevInfo{edge: cur.edge, node: succ.node}
				pq.Push(frontierItem{edge: succ.edge, cost: next})
			}
		}
	}

	return Path{}, nil // no path found: an empty result, not an error
}

func saturatingAdd(a, b uint32) uint32 {
	sum := uint64(a) + uint64(b)
	if sum > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}
	return uint32(sum)
}

// reconstructPath walks prev back from end to start, emitting edges in
// forward order and the shared nodes joining consecutive edges.
func reconstructPath(start, end uint32, prev map[uint32]prevInfo) Path {
	var edges, nodes []uint32
	cur := end
	for cur != start {
		edges = append(edges, cur)
		info, ok := prev[cur]
		if !ok {
			return Path{}
		}
		nodes = append(nodes, info.node)
		cur = info.edge
	}
	edges = append(edges, start)

	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return Path{Edges: edges, Nodes: nodes}
}
