package snapservice

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/osmroute/osmroute/cellspace"
	"github.com/osmroute/osmroute/graphbuild"
	"github.com/osmroute/osmroute/snapindex"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir string, lat, lng float64, edgeIdx uint32) cellspace.CellId {
	t.Helper()
	c := cellspace.FromLatLng(lat, lng)
	files, err := snapindex.Build([]graphbuild.EdgeLocation{{Points: []uint64{uint64(c), uint64(c)}}}, 4, 8)
	require.NoError(t, err)
	require.Len(t, files, 1)

	// snapindex.Build always assigns edge index 0 for a single input edge;
	// remap it to edgeIdx so multiple fixtures don't collide.
	files[0].Buckets[0].EdgeIndexes[0] = edgeIdx
	require.NoError(t, snapindex.WriteAll(dir, files))
	return cellspace.CellId(files[0].OuterCellId)
}

func TestSnapFindsExactLocalBucket(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, 6.2442, -75.5812, 42)

	svc, err := Load(dir, 4, 8, nil)
	require.NoError(t, err)

	res, err := svc.Snap(context.Background(), 6.2442, -75.5812)
	require.NoError(t, err)
	require.True(t, res.Snapped)
	require.Equal(t, uint32(42), res.EdgeIndex)
}

func TestSnapReturnsNotLoadedOnEmptyDir(t *testing.T) {
	dir := t.TempDir()
	svc, err := Load(dir, 4, 8, nil)
	require.NoError(t, err)

	_, err = svc.Snap(context.Background(), 6.24, -75.58)
	require.Error(t, err)
}

func TestSnapReturnsUnsnappedResultWhenNoCandidateNearby(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, 6.2442, -75.5812, 42)

	svc, err := Load(dir, 4, 8, nil)
	require.NoError(t, err)

	const queryLat, queryLng = -33.8688, 151.2093
	res, err := svc.Snap(context.Background(), queryLat, queryLng)
	require.NoError(t, err)
	require.False(t, res.Snapped)
	require.Equal(t, uint32(0), res.EdgeIndex)
	require.Equal(t, queryLat, res.Lat)
	require.Equal(t, queryLng, res.Lng)
}

func TestSnapRejectsBadLevelOrdering(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir, 8, 4, nil)
	require.Error(t, err)
}

func TestSnapSkipsUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, 6.2442, -75.5812, 7)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a bucket"), 0o644))

	svc, err := Load(dir, 4, 8, nil)
	require.NoError(t, err)

	res, err := svc.Snap(context.Background(), 6.2442, -75.5812)
	require.NoError(t, err)
	require.Equal(t, uint32(7), res.EdgeIndex)
}

func TestSnapRespectsContextDeadline(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, 6.2442, -75.5812, 1)

	svc, err := Load(dir, 4, 8, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.Snap(ctx, 6.2442, -75.5812)
	require.Error(t, err)
}
