// Package snapservice finds the nearest graph edge to a query coordinate by
// walking the two-level spatial bucket layout snapindex produces.
package snapservice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/osmroute/osmroute/cellspace"
	"github.com/osmroute/osmroute/graphbuild"
	"github.com/osmroute/osmroute/internal/apierr"
	"github.com/osmroute/osmroute/snapindex"
	"go.uber.org/zap"
)

// Result is the outcome of a Snap call. On a match, EdgeIndex/Lat/Lng
// identify the matched edge and its cell's own center. On a miss, Snapped
// is false and the input coordinate is echoed back unchanged with
// EdgeIndex 0.
type Result struct {
	EdgeIndex uint32
	Lat, Lng  float64
	Snapped   bool
}

// Service holds every snap bucket file found under a directory, loaded
// once at startup.
type Service struct {
	files      map[cellspace.CellId]snapindex.File
	outerLevel int
	innerLevel int
}

// Load reads every snap bucket file in dir and builds a Service.
func Load(dir string, outerLevel, innerLevel int, log *zap.SugaredLogger) (*Service, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if outerLevel >= innerLevel {
		return nil, apierr.Wrap(apierr.ParseError, fmt.Errorf("snapservice: outer_cell_level (%d) must be < inner_cell_level (%d)", outerLevel, innerLevel))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apierr.Wrap(apierr.IOError, fmt.Errorf("snapservice: reading %s: %w", dir, err))
	}

	files := make(map[cellspace.CellId]snapindex.File)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "snap_bucket_") || !strings.HasSuffix(name, ".bin") {
			continue
		}
		token := name[len("snap_bucket_") : len(name)-len(".bin")]
		outerID := cellspace.FromToken(token)
		if !outerID.Valid() {
			log.Warnw("skipping snap bucket file with unparsable token", "file", name)
			continue
		}

		var f snapindex.File
		if err := graphbuild.ReadBlob(filepath.Join(dir, name), &f); err != nil {
			return nil, err
		}
		files[outerID] = f
		log.Infow("loaded snap bucket file", "outer_cell", token, "buckets", len(f.Buckets))
	}

	log.Infow("snapservice loaded", "outer_files", len(files))
	return &Service{files: files, outerLevel: outerLevel, innerLevel: innerLevel}, nil
}

// candidate is one matched edge within a bucket, tracked so Snap can pick
// the globally closest one across the local cell and its probed neighbors.
type candidate struct {
	edgeIndex uint32
	cellID    cellspace.CellId
	dist      float64
}

// lookupBucket returns the bucket matching innerID within the outer file
// owning innerID, if that outer file has been loaded and contains it.
func (s *Service) lookupBucket(innerID cellspace.CellId) (snapindex.Bucket, bool) {
	outerID := innerID.Parent(s.outerLevel)
	f, ok := s.files[outerID]
	if !ok {
		return snapindex.Bucket{}, false
	}
	for _, b := range f.Buckets {
		if cellspace.CellId(b.CellId) == innerID {
			return b, true
		}
	}
	return snapindex.Bucket{}, false
}

// closestInBucket scans b linearly and returns the edge whose cell is
// angularly closest to query.
func closestInBucket(b snapindex.Bucket, query cellspace.CellId) (candidate, bool) {
	if len(b.EdgeCellIds) == 0 {
		return candidate{}, false
	}
	best := candidate{
		edgeIndex: b.EdgeIndexes[0],
		cellID:    cellspace.CellId(b.EdgeCellIds[0]),
		dist:      query.AngularDistance(cellspace.CellId(b.EdgeCellIds[0])),
	}
	for i := 1; i < len(b.EdgeCellIds); i++ {
		c := cellspace.CellId(b.EdgeCellIds[i])
		d := query.AngularDistance(c)
		if d < best.dist {
			best = candidate{edgeIndex: b.EdgeIndexes[i], cellID: c, dist: d}
		}
	}
	return best, true
}

// Snap finds the nearest graph edge to (lat, lng). It first tries the
// bucket matching the query's own inner cell, then widens the search to
// the query's inner-level neighbors, keeping whichever candidate across
// all of them is closest. A full miss is not an error: it returns the
// input coordinate unchanged with Snapped false.
func (s *Service) Snap(ctx context.Context, lat, lng float64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, apierr.Wrap(apierr.DeadlineExceeded, err)
	}
	if len(s.files) == 0 {
		return Result{}, apierr.Wrap(apierr.NotLoaded, fmt.Errorf("snapservice: no snap bucket files loaded"))
	}

	query := cellspace.FromLatLng(lat, lng)
	innerIDs := append([]cellspace.CellId{query.Parent(s.innerLevel)}, query.AllNeighbors(s.innerLevel)...)

	var best candidate
	found := false
	for _, innerID := range innerIDs {
		bucket, ok := s.lookupBucket(innerID)
		if !ok {
			continue
		}
		c, ok := closestInBucket(bucket, query)
		if !ok {
			continue
		}
		if !found || c.dist < best.dist {
			best, found = c, true
		}
	}

	if !found {
		return Result{EdgeIndex: 0, Lat: lat, Lng: lng, Snapped: false}, nil
	}

	edgeLat, edgeLng := best.cellID.Center()
	return Result{EdgeIndex: best.edgeIndex, Lat: edgeLat, Lng: edgeLng, Snapped: true}, nil
}
