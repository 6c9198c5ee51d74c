package routeservice

// frontierItem is one entry in the Dijkstra priority queue: a candidate
// edge-dual node (a road edge) together with its best known cumulative cost.
// prevEdge/prevNode/hasPrev are not filled in by shortestPath, which keeps
// predecessors in its own prev map instead.
type frontierItem struct {
	edge     uint32
	cost     uint32
	prevEdge uint32
	prevNode uint32
	hasPrev  bool
}

// less orders two items by (cost, edge index), breaking ties on edge index
// so the pop order is total and deterministic.
func (a frontierItem) less(b frontierItem) bool {
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	return a.edge < b.edge
}

// frontier is an array-based binary min-heap over frontierItem, ordered by
// (cost, edge).
type frontier struct {
	items []frontierItem
}

func (h *frontier) IsEmpty() bool {
	return len(h.items) == 0
}

func (h *frontier) Push(it frontierItem) {
	h.items = append(h.items, it)
	h.heapifyUp(len(h.items) - 1)
}

// Pop removes and returns the minimum item.
func (h *frontier) Pop() frontierItem {
	top := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items = h.items[:last]
	if len(h.items) > 0 {
		h.heapifyDown(0)
	}
	return top
}

func parentIndex(i int) int     { return (i - 1) / 2 }
func leftChildIndex(i int) int  { return 2*i + 1 }
func rightChildIndex(i int) int { return 2*i + 2 }

func (h *frontier) heapifyUp(i int) {
	for i > 0 {
		p := parentIndex(i)
		if !h.items[i].less(h.items[p]) {
			break
		}
		h.items[i], h.items[p] = h.items[p], h.items[i]
		i = p
	}
}

func (h *frontier) heapifyDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		if l := leftChildIndex(i); l < n && h.items[l].less(h.items[smallest]) {
			smallest = l
		}
		if r := rightChildIndex(i); r < n && h.items[r].less(h.items[smallest]) {
			smallest = r
		}
		if smallest == i {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
