package routeservice

import "math/big"

// edgeSet is a memory-efficient set of edge indices, backed by math/big.Int,
// used to track which edge-dual nodes Dijkstra has already finalized.
type edgeSet struct {
	bits big.Int
}

func (s *edgeSet) has(edge uint32) bool {
	return s.bits.Bit(int(edge)) == 1
}

func (s *edgeSet) add(edge uint32) {
	s.bits.SetBit(&s.bits, int(edge), 1)
}
