// Package routeservice implements online k-shortest-paths search over a
// graph's edge-dual, where vertices of the search are road edges and the
// cost of moving between two of them includes both edge traversal time and
// the turn cost at their shared intersection.
package routeservice

import (
	"context"
	"fmt"

	"github.com/osmroute/osmroute/cellspace"
	"github.com/osmroute/osmroute/graphbuild"
	"github.com/osmroute/osmroute/internal/apierr"
	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/zap"
)

// deadlineCheckInterval bounds how many priority-queue pops Dijkstra makes
// between deadline checks.
const deadlineCheckInterval = 1024

// Path is one edge-path: nodes[i] is the graph node joining edges[i] to
// edges[i+1].
type Path struct {
	Edges []uint32
	Nodes []uint32
}

// Service holds a single preloaded Graph blob, shared read-only across
// concurrent request handlers.
type Service struct {
	graph graphbuild.GraphBlob
}

// Load reads the Graph blob at graphPath. The Location and Description
// blobs are not required by RouteService (only Nodes/Edges are read).
func Load(graphPath string, log *zap.SugaredLogger) (*Service, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	var graph graphbuild.GraphBlob
	if err := graphbuild.ReadBlob(graphPath, &graph); err != nil {
		return nil, err
	}
	log.Infow("routeservice loaded graph", "nodes", len(graph.Nodes), "edges", len(graph.Edges))
	return &Service{graph: graph}, nil
}

// Route returns up to k edge-disjoint-ish paths from startEdge to endEdge:
// the first path is a plain Dijkstra run; each subsequent run avoids every
// edge of the previously found path (except endEdge itself) and stops as
// soon as one attempt finds nothing.
func (s *Service) Route(ctx context.Context, startEdge, endEdge uint32, k int) ([]Path, error) {
	if s == nil {
		return nil, apierr.Wrap(apierr.NotLoaded, fmt.Errorf("routeservice: graph not loaded"))
	}
	if int(startEdge) >= len(s.graph.Edges) || int(endEdge) >= len(s.graph.Edges) {
		return nil, apierr.Wrap(apierr.OutOfRange, fmt.Errorf("routeservice: edge index out of range (have %d edges)", len(s.graph.Edges)))
	}
	if k < 1 {
		k = 1
	}

	avoid := make(map[uint32]bool)
	var paths []Path

	for i := 0; i < k; i++ {
		p, err := shortestPath(ctx, &s.graph, startEdge, endEdge, avoid)
		if err != nil {
			return paths, err
		}
		if len(p.Edges) == 0 {
			break // no (further) path found: stop, return what we have
		}
		paths = append(paths, p)
		for _, e := range p.Edges {
			if e != endEdge {
				avoid[e] = true
			}
		}
	}

	return paths, nil
}

// ToGeoJSON renders p as a GeoJSON LineString feature collection for visual
// debugging, using node cell centers from location. An empty path, or one
// for which fewer than two node locations are known, yields an empty
// collection; a one-edge path renders as the line between its endpoints.
func ToGeoJSON(p Path, location graphbuild.LocationBlob, graph graphbuild.GraphBlob) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(p.Edges) == 0 {
		return fc
	}

	var coords [][]float64
	appendNode := func(nodeIdx uint32) {
		if int(nodeIdx) >= len(location.NodeLocations) {
			return
		}
		lat, lng := cellspace.CellId(location.NodeLocations[nodeIdx]).Center()
		coords = append(coords, []float64{lng, lat})
	}

	edge := graph.Edges[p.Edges[0]]
	appendNode(edge.Endpoint1)
	for _, n := range p.Nodes {
		appendNode(n)
	}
	lastEdge := graph.Edges[p.Edges[len(p.Edges)-1]]
	appendNode(lastEdge.Endpoint2)

	if len(coords) < 2 {
		return fc
	}
	fc.AddFeature(geojson.NewLineStringFeature(coords))
	return fc
}
