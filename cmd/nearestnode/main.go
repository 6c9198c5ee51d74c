// Command nearestnode is a debug tool: given a Location blob and a query
// coordinate, it finds the nearest graph node by building a planar k-d
// tree over every node's projected position.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/osmroute/osmroute/cellspace"
	"github.com/osmroute/osmroute/graphbuild"
	"github.com/osmroute/osmroute/internal/geoutil"
)

func main() {
	locationPath := flag.String("location", "", "path to location.bin")
	lat := flag.Float64("lat", 0, "query latitude in degrees")
	lng := flag.Float64("lng", 0, "query longitude in degrees")
	flag.Parse()

	if *locationPath == "" {
		fmt.Fprintln(os.Stderr, "missing required -location flag")
		os.Exit(1)
	}

	var location graphbuild.LocationBlob
	if err := graphbuild.ReadBlob(*locationPath, &location); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	points := make([]geoutil.Point, len(location.NodeLocations))
	for i, cellID := range location.NodeLocations {
		nodeLat, nodeLng := cellspace.CellId(cellID).Center()
		x, y := geoutil.LatLngToMeters(nodeLat, nodeLng)
		points[i] = geoutil.Point{NodeIdx: uint32(i), Components: [2]float64{x, y}}
	}

	tree := geoutil.Build(points)
	x, y := geoutil.LatLngToMeters(*lat, *lng)
	nearest, dist := tree.FindNearest(geoutil.Point{Components: [2]float64{x, y}})

	fmt.Printf("nearest node: %d (%.2fm away)\n", nearest.NodeIdx, dist)
}
