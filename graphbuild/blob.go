package graphbuild

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/osmroute/osmroute/internal/apierr"
)

// Interaction is the traffic-control regime an agent observes when entering
// (incoming) and leaving (outgoing) an edge at a node. Unknown/unset
// control kinds encode as controlNone.
type Interaction struct {
	Incoming controlKind
	Outgoing controlKind
}

// GraphNode is one intersection.
type GraphNode struct {
	IncidentEdges []uint32
	Interactions  []Interaction
}

// GraphEdge is the fixed-width part of an edge: its two endpoint node
// indices plus a packed cost/flags word.
type GraphEdge struct {
	Endpoint1     uint32
	Endpoint2     uint32
	CostsAndFlags uint16
}

// MaxEdgeSeconds is the largest traversal-time value that fits in the 13
// bits (bits 3..15 of a uint16) CostsAndFlags reserves for seconds; values
// above this saturate rather than overflow into the flag bits.
const MaxEdgeSeconds = 1<<13 - 1

// backwardsAllowedBit is bit 0 of CostsAndFlags.
const backwardsAllowedBit = 1 << 0

// BackwardsAllowed reports whether travel from Endpoint2 to Endpoint1 is
// permitted.
func (e GraphEdge) BackwardsAllowed() bool {
	return e.CostsAndFlags&backwardsAllowedBit != 0
}

// Seconds returns the u13 traversal-time cost.
func (e GraphEdge) Seconds() uint32 {
	return uint32(e.CostsAndFlags >> 3)
}

func packCostsAndFlags(seconds int, backwardsAllowed bool) uint16 {
	if seconds < 1 {
		seconds = 1
	}
	if seconds > MaxEdgeSeconds {
		seconds = MaxEdgeSeconds
	}
	v := uint16(seconds) << 3
	if backwardsAllowed {
		v |= backwardsAllowedBit
	}
	return v
}

// GraphBlob is the root graph artifact: nodes and edges, name and build
// time.
type GraphBlob struct {
	Name    string
	BuiltAt time.Time
	Nodes   []GraphNode
	Edges   []GraphEdge
}

// EdgeLocation is an edge's polyline, cell-id per point, first/last
// coinciding with the edge's endpoints' cells.
type EdgeLocation struct {
	Points []uint64
}

// LocationBlob is the cell-id location artifact, parallel to
// GraphBlob.Nodes and GraphBlob.Edges respectively.
type LocationBlob struct {
	NodeLocations []uint64
	EdgeLocations []EdgeLocation
}

// EdgeDescription is one edge's descriptive metadata: its priority and
// street names, plus its road class and per-mode speeds for future
// mode-aware routing.
type EdgeDescription struct {
	Priority      uint8
	StreetNames   []string
	RoadClass     string
	ModeSpeedsKMH [4]float32 // indexed by TravelMode
}

// DescriptionBlob is the descriptive-metadata artifact, parallel to
// GraphBlob.Edges.
type DescriptionBlob struct {
	EdgeDescriptions []EdgeDescription
}

// Blobs bundles the three build outputs that together describe one graph.
type Blobs struct {
	Graph       GraphBlob
	Location    LocationBlob
	Description DescriptionBlob
}

// BlobsEqual compares two Blobs for determinism checks, ignoring the build
// timestamp.
func BlobsEqual(a, b Blobs) bool {
	a.Graph.BuiltAt, b.Graph.BuiltAt = time.Time{}, time.Time{}
	return gobEqual(a, b)
}

func gobEqual(a, b any) bool {
	ae, aErr := encodeGob(a)
	be, bErr := encodeGob(b)
	if aErr != nil || bErr != nil {
		return false
	}
	if len(ae) != len(be) {
		return false
	}
	for i := range ae {
		if ae[i] != be[i] {
			return false
		}
	}
	return true
}

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteBlob gob-encodes v to path.
func WriteBlob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return apierr.Wrap(apierr.IOError, fmt.Errorf("graphbuild: create %s: %w", path, err))
	}
	defer f.Close()

	enc := gob.NewEncoder(f)
	if err := enc.Encode(v); err != nil {
		return apierr.Wrap(apierr.IOError, fmt.Errorf("graphbuild: encode %s: %w", path, err))
	}
	return nil
}

// ReadBlob gob-decodes path into v.
func ReadBlob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return apierr.Wrap(apierr.IOError, fmt.Errorf("graphbuild: open %s: %w", path, err))
	}
	defer f.Close()

	dec := gob.NewDecoder(f)
	if err := dec.Decode(v); err != nil {
		return apierr.Wrap(apierr.ParseError, fmt.Errorf("graphbuild: decode %s: %w", path, err))
	}
	return nil
}
