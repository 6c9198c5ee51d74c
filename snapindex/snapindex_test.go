package snapindex

import (
	"testing"

	"github.com/osmroute/osmroute/cellspace"
	"github.com/osmroute/osmroute/graphbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPartitionsEveryEdgeExactlyOnce(t *testing.T) {
	c1 := cellspace.FromLatLng(6.24, -75.58)
	c2 := cellspace.FromLatLng(-33.45, -70.66) // Santiago: far enough to land in a different outer cell

	locations := []graphbuild.EdgeLocation{
		{Points: []uint64{uint64(c1), uint64(c1), uint64(c1)}},
		{Points: []uint64{uint64(c2), uint64(c2), uint64(c2)}},
	}

	files, err := Build(locations, 4, 8)
	require.NoError(t, err)

	seen := make(map[uint32]int)
	for _, f := range files {
		for _, b := range f.Buckets {
			for _, idx := range b.EdgeIndexes {
				seen[idx]++
			}
		}
	}
	assert.Len(t, seen, len(locations))
	for idx, count := range seen {
		assert.Equalf(t, 1, count, "edge %d appeared in %d buckets", idx, count)
	}
}

func TestBuildRejectsBadLevelOrdering(t *testing.T) {
	_, err := Build(nil, 8, 4)
	require.Error(t, err)
}

func TestBuildGroupsSameCellIntoOneBucket(t *testing.T) {
	c := cellspace.FromLatLng(6.24, -75.58)
	locations := []graphbuild.EdgeLocation{
		{Points: []uint64{uint64(c), uint64(c)}},
		{Points: []uint64{uint64(c), uint64(c)}},
	}

	files, err := Build(locations, 4, 8)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Len(t, files[0].Buckets, 1)
	assert.ElementsMatch(t, []uint32{0, 1}, files[0].Buckets[0].EdgeIndexes)
}

func TestFileNameRoundTripsThroughToken(t *testing.T) {
	c := cellspace.FromLatLng(6.24, -75.58).Parent(4)
	f := File{OuterCellId: uint64(c)}
	name := f.FileName()

	back := cellspace.FromToken(name[len("snap_bucket_") : len(name)-len(".bin")])
	assert.Equal(t, c, back)
}
