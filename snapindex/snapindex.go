// Package snapindex builds a two-level spatial index grouping every edge by
// a coarse outer cell (one file per cell) and, within that file, by a finer
// inner cell (one bucket per cell).
package snapindex

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/osmroute/osmroute/cellspace"
	"github.com/osmroute/osmroute/graphbuild"
	"github.com/osmroute/osmroute/internal/apierr"
)

// Bucket is one inner-cell bucket within a snap file.
type Bucket struct {
	CellId      uint64
	EdgeCellIds []uint64
	EdgeIndexes []uint32
}

// File is the content of one snap_bucket_<token>.bin, all the buckets
// whose outer-cell parent is the same.
type File struct {
	OuterCellId uint64
	Buckets     []Bucket
}

// representativeCell picks the representative location of an edge as its
// polyline midpoint, matching the representative point graphbuild uses when
// ordering edges so the two components agree on what an edge's "location"
// means.
func representativeCell(loc graphbuild.EdgeLocation) cellspace.CellId {
	return cellspace.CellId(loc.Points[len(loc.Points)/2])
}

// Build groups every edge in locations into per-outer-cell Files.
// outerLevel must be < innerLevel.
func Build(locations []graphbuild.EdgeLocation, outerLevel, innerLevel int) ([]File, error) {
	if outerLevel >= innerLevel {
		return nil, apierr.Wrap(apierr.ParseError, fmt.Errorf("snapindex: outer_cell_level (%d) must be < inner_cell_level (%d)", outerLevel, innerLevel))
	}

	type outerGroup struct {
		innerBuckets map[cellspace.CellId]*Bucket
		innerOrder   []cellspace.CellId
	}
	outers := make(map[cellspace.CellId]*outerGroup)
	var outerOrder []cellspace.CellId

	for edgeIdx, loc := range locations {
		if len(loc.Points) == 0 {
			continue
		}
		rep := representativeCell(loc)
		outerID := rep.Parent(outerLevel)
		innerID := rep.Parent(innerLevel)

		og, ok := outers[outerID]
		if !ok {
			og = &outerGroup{innerBuckets: make(map[cellspace.CellId]*Bucket)}
			outers[outerID] = og
			outerOrder = append(outerOrder, outerID)
		}

		b, ok := og.innerBuckets[innerID]
		if !ok {
			b = &Bucket{CellId: uint64(innerID)}
			og.innerBuckets[innerID] = b
			og.innerOrder = append(og.innerOrder, innerID)
		}
		b.EdgeCellIds = append(b.EdgeCellIds, uint64(rep))
		b.EdgeIndexes = append(b.EdgeIndexes, uint32(edgeIdx))
	}

	// Deterministic output: outer files sorted by token, and within each
	// file, buckets sorted by inner cell id.
	sort.Slice(outerOrder, func(i, j int) bool { return outerOrder[i].Token() < outerOrder[j].Token() })

	files := make([]File, 0, len(outerOrder))
	for _, outerID := range outerOrder {
		og := outers[outerID]
		sort.Slice(og.innerOrder, func(i, j int) bool { return og.innerOrder[i] < og.innerOrder[j] })

		buckets := make([]Bucket, len(og.innerOrder))
		for i, innerID := range og.innerOrder {
			buckets[i] = *og.innerBuckets[innerID]
		}
		files = append(files, File{OuterCellId: uint64(outerID), Buckets: buckets})
	}

	return files, nil
}

// FileName returns the on-disk name for f: snap_bucket_<token>.bin.
func (f File) FileName() string {
	return fmt.Sprintf("snap_bucket_%s.bin", cellspace.CellId(f.OuterCellId).Token())
}

// WriteAll gob-encodes every file in files to dir, named per FileName.
func WriteAll(dir string, files []File) error {
	for _, f := range files {
		path := filepath.Join(dir, f.FileName())
		if err := graphbuild.WriteBlob(path, f); err != nil {
			return err
		}
	}
	return nil
}
