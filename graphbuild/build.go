// Package graphbuild distills an OSM PBF extract into a deduplicated
// intersection/edge graph and its parallel Location/Description blobs.
package graphbuild

import (
	"fmt"
	"sort"

	"github.com/osmroute/osmroute/cellspace"
	"github.com/osmroute/osmroute/internal/apierr"
	"go.uber.org/zap"
)

// TravelMode indexes the four-slot mode arrays carried by the Description
// blob: a fixed ordered set of Car, Bike, Walk, Transit.
type TravelMode int

const (
	Car TravelMode = iota
	Bike
	Walk
	Transit
)

// rawEdge is one deduplicated edge candidate, keyed by its canonical
// (smaller, larger) dense node index pair, before final sorting and index
// assignment.
type rawEdge struct {
	lo, hi           int32 // lo < hi, dense node indices
	polyline         []uint64
	backwardsAllowed bool
	distanceMeters   float64
	roadClass        string
	carSpeedKMH      float64
	bikeSpeedKMH     float64
	walkSpeedKMH     float64
	streetNames      []string
}

func edgeKey(a, b int32) [2]int32 {
	if a < b {
		return [2]int32{a, b}
	}
	return [2]int32{b, a}
}

// Build runs GraphBuilder end to end over the OSM PBF file at path and
// returns the three build artifacts. log may be nil, in which case a no-op
// logger is used.
func Build(path string, log *zap.SugaredLogger) (Blobs, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	ways, touches, endpoints, err := scanWays(path)
	if err != nil {
		return Blobs{}, err
	}
	log.Infow("scanned ways", "kept_ways", len(ways))

	referenced := make(map[int64]bool, len(touches))
	for id := range touches {
		referenced[id] = true
	}

	nodes, err := scanNodes(path, referenced)
	if err != nil {
		return Blobs{}, err
	}
	log.Infow("scanned nodes", "referenced_nodes", len(nodes))

	intersections := make(map[int64]bool)
	for id, n := range touches {
		if n >= 2 || endpoints[id] {
			intersections[id] = true
		}
	}

	osmToIdx, cellOf, err := assignDenseIndices(intersections, nodes)
	if err != nil {
		return Blobs{}, err
	}
	log.Infow("assigned intersection indices", "intersections", len(osmToIdx))

	rawEdges, dropped := distillEdges(ways, nodes, osmToIdx)
	log.Infow("distilled edges", "edges", len(rawEdges), "dropped_ways", dropped)

	sortedKeys := make([][2]int32, 0, len(rawEdges))
	for k := range rawEdges {
		sortedKeys = append(sortedKeys, k)
	}
	order, err := orderEdgesByRepresentativeCell(sortedKeys, rawEdges)
	if err != nil {
		return Blobs{}, err
	}

	graphNodes := make([]GraphNode, len(osmToIdx))
	graphEdges := make([]GraphEdge, len(order))
	edgeLocations := make([]EdgeLocation, len(order))
	edgeDescriptions := make([]EdgeDescription, len(order))

	controlOf := make([]controlKind, len(osmToIdx))
	for osmID, idx := range osmToIdx {
		controlOf[idx] = nodes[osmID].control
	}

	for i, key := range order {
		re := rawEdges[key]
		seconds := travelSeconds(re)

		graphEdges[i] = GraphEdge{
			Endpoint1:     uint32(re.lo),
			Endpoint2:     uint32(re.hi),
			CostsAndFlags: packCostsAndFlags(seconds, re.backwardsAllowed),
		}
		edgeLocations[i] = EdgeLocation{Points: re.polyline}
		edgeDescriptions[i] = EdgeDescription{
			Priority:    priorityFor(re.roadClass),
			StreetNames: re.streetNames,
			RoadClass:   re.roadClass,
			ModeSpeedsKMH: [4]float32{
				Car:     float32(re.carSpeedKMH),
				Bike:    float32(re.bikeSpeedKMH),
				Walk:    float32(re.walkSpeedKMH),
				Transit: 0,
			},
		}

		graphNodes[re.lo].IncidentEdges = append(graphNodes[re.lo].IncidentEdges, uint32(i))
		graphNodes[re.lo].Interactions = append(graphNodes[re.lo].Interactions, Interaction{
			Incoming: controlOf[re.lo], Outgoing: controlOf[re.lo],
		})
		if re.backwardsAllowed {
			graphNodes[re.hi].IncidentEdges = append(graphNodes[re.hi].IncidentEdges, uint32(i))
			graphNodes[re.hi].Interactions = append(graphNodes[re.hi].Interactions, Interaction{
				Incoming: controlOf[re.hi], Outgoing: controlOf[re.hi],
			})
		}
	}

	nodeLocations := make([]uint64, len(osmToIdx))
	for osmID, idx := range osmToIdx {
		nodeLocations[idx] = uint64(cellOf[osmID])
	}

	return Blobs{
		Graph: GraphBlob{
			Name:  path,
			Nodes: graphNodes,
			Edges: graphEdges,
		},
		Location: LocationBlob{
			NodeLocations: nodeLocations,
			EdgeLocations: edgeLocations,
		},
		Description: DescriptionBlob{
			EdgeDescriptions: edgeDescriptions,
		},
	}, nil
}

// assignDenseIndices gives every intersection node a dense u32 index in
// sorted-cell-token order, tie-broken by OSM id for determinism.
func assignDenseIndices(intersections map[int64]bool, nodes map[int64]osmNode) (map[int64]int32, map[int64]cellspace.CellId, error) {
	type entry struct {
		osmID int64
		cell  cellspace.CellId
	}
	entries := make([]entry, 0, len(intersections))
	cellOf := make(map[int64]cellspace.CellId, len(intersections))

	for osmID := range intersections {
		n, ok := nodes[osmID]
		if !ok {
			return nil, nil, apierr.Wrap(apierr.ParseError, fmt.Errorf("graphbuild: intersection node %d missing coordinates", osmID))
		}
		c := cellspace.FromLatLng(n.lat, n.lng)
		cellOf[osmID] = c
		entries = append(entries, entry{osmID: osmID, cell: c})
	}

	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].cell.Token(), entries[j].cell.Token()
		if ti != tj {
			return ti < tj
		}
		return entries[i].osmID < entries[j].osmID
	})

	out := make(map[int64]int32, len(entries))
	for i, e := range entries {
		out[e.osmID] = int32(i)
	}
	return out, cellOf, nil
}

// distillEdges walks each way, emitting one edge per consecutive pair of
// intersection nodes, deduplicated by the unordered endpoint pair.
func distillEdges(ways []wayInfo, nodes map[int64]osmNode, osmToIdx map[int64]int32) (map[[2]int32]rawEdge, int) {
	result := make(map[[2]int32]rawEdge)
	dropped := 0

wayLoop:
	for _, w := range ways {
		for _, id := range w.nodeIDs {
			if _, ok := nodes[id]; !ok {
				dropped++
				continue wayLoop
			}
		}

		speeds := speedsFor(w.roadClass)
		carSpeed := speeds.car
		if w.maxspeedCar > 0 {
			carSpeed = w.maxspeedCar
		}

		var streetNames []string
		if w.name != "" {
			streetNames = []string{w.name}
		}

		segStartOSM := w.nodeIDs[0]
		segPoints := []uint64{uint64(cellspace.FromLatLng(nodes[segStartOSM].lat, nodes[segStartOSM].lng))}

		for i := 1; i < len(w.nodeIDs); i++ {
			id := w.nodeIDs[i]
			segPoints = append(segPoints, uint64(cellspace.FromLatLng(nodes[id].lat, nodes[id].lng)))

			_, isIntersection := osmToIdx[id]
			if !isIntersection {
				continue
			}

			fromIdx, toIdx := osmToIdx[segStartOSM], osmToIdx[id]
			if fromIdx != toIdx {
				addRawEdge(result, fromIdx, toIdx, segPoints, w.oneway, carSpeed, speeds.bike, speeds.walk, w.roadClass, streetNames)
			}

			segStartOSM = id
			segPoints = []uint64{uint64(cellspace.FromLatLng(nodes[id].lat, nodes[id].lng))}
		}
	}

	return result, dropped
}

func addRawEdge(result map[[2]int32]rawEdge, fromIdx, toIdx int32, polyline []uint64, oneway bool, carSpeed, bikeSpeed, walkSpeed float64, roadClass string, streetNames []string) {
	key := edgeKey(fromIdx, toIdx)
	runsAgainstCanonical := fromIdx > toIdx

	existing, seen := result[key]
	if !seen {
		pl := append([]uint64(nil), polyline...)
		if runsAgainstCanonical {
			reverseCellIDs(pl)
		}
		lo, hi := key[0], key[1]
		dist := cellspace.CellId(pl[0]).AngularDistance(cellspace.CellId(pl[len(pl)-1])) * cellspace.EarthRadiusMeters

		result[key] = rawEdge{
			lo: lo, hi: hi,
			polyline:         pl,
			backwardsAllowed: runsAgainstCanonical || !oneway,
			distanceMeters:   dist,
			roadClass:        roadClass,
			carSpeedKMH:      carSpeed,
			bikeSpeedKMH:     bikeSpeed,
			walkSpeedKMH:     walkSpeed,
			streetNames:      streetNames,
		}
		return
	}

	existing.backwardsAllowed = existing.backwardsAllowed || runsAgainstCanonical || !oneway
	result[key] = existing
}

func reverseCellIDs(s []uint64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// travelSeconds derives the single seconds field from the fastest mode
// available in priority Car > Bike > Walk, so every edge stays routable
// under the mode-unaware routing core.
func travelSeconds(re rawEdge) int {
	speed := re.carSpeedKMH
	if speed <= 0 {
		speed = re.bikeSpeedKMH
	}
	if speed <= 0 {
		speed = re.walkSpeedKMH
	}
	if speed <= 0 {
		speed = 5 // safety fallback; speedTable always supplies >=1 nonzero mode
	}

	metersPerSecond := speed * 1000 / 3600
	seconds := int(re.distanceMeters / metersPerSecond)
	if seconds < 1 {
		seconds = 1
	}
	if seconds > MaxEdgeSeconds {
		seconds = MaxEdgeSeconds
	}
	return seconds
}

// orderEdgesByRepresentativeCell sorts edges by the cell token of their
// representative point, using each edge's polyline midpoint as that
// representative — the same choice snapindex makes, kept consistent
// across both components.
func orderEdgesByRepresentativeCell(keys [][2]int32, edges map[[2]int32]rawEdge) ([][2]int32, error) {
	type entry struct {
		key   [2]int32
		token string
	}
	entries := make([]entry, 0, len(keys))
	for _, k := range keys {
		e, ok := edges[k]
		if !ok {
			return nil, apierr.Wrap(apierr.ParseError, fmt.Errorf("graphbuild: missing edge for key %v", k))
		}
		mid := e.polyline[len(e.polyline)/2]
		entries = append(entries, entry{key: k, token: cellspace.CellId(mid).Token()})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].token != entries[j].token {
			return entries[i].token < entries[j].token
		}
		if entries[i].key[0] != entries[j].key[0] {
			return entries[i].key[0] < entries[j].key[0]
		}
		return entries[i].key[1] < entries[j].key[1]
	})

	out := make([][2]int32, len(entries))
	for i, e := range entries {
		out[i] = e.key
	}
	return out, nil
}
