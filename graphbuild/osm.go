package graphbuild

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/osmroute/osmroute/internal/apierr"
	"github.com/qedus/osmpbf"
)

// wayInfo is a filtered OSM way: one that carries a highway tag.
type wayInfo struct {
	id          int64
	nodeIDs     []int64
	roadClass   string
	oneway      bool
	maxspeedCar float64 // 0 means "not present/not parseable"
	name        string
}

// osmNode is the subset of an OSM node's data the builder needs once it
// knows the node is referenced by a filtered way.
type osmNode struct {
	lat, lng float64
	control  controlKind
}

func openDecoder(path string) (*osmpbf.Decoder, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apierr.Wrap(apierr.IOError, fmt.Errorf("graphbuild: open %s: %w", path, err))
	}

	d := osmpbf.NewDecoder(f)
	d.SetBufferSize(osmpbf.MaxBlobSize)
	if err := d.Start(runtime.GOMAXPROCS(-1)); err != nil {
		f.Close()
		return nil, nil, apierr.Wrap(apierr.ParseError, fmt.Errorf("graphbuild: start decoder for %s: %w", path, err))
	}
	return d, f, nil
}

// scanWays decodes every way in path once, keeps the ones with a highway
// tag, and returns, per referenced OSM node id, how many kept ways touch it
// and whether it is a first/last node of any of them.
func scanWays(path string) (ways []wayInfo, touches map[int64]int, endpoint map[int64]bool, err error) {
	d, f, err := openDecoder(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	touches = make(map[int64]int)
	endpoint = make(map[int64]bool)

	for {
		obj, decErr := d.Decode()
		if decErr == io.EOF {
			break
		}
		if decErr != nil {
			return nil, nil, nil, apierr.Wrap(apierr.ParseError, fmt.Errorf("graphbuild: decode %s: %w", path, decErr))
		}

		way, ok := obj.(*osmpbf.Way)
		if !ok {
			continue
		}
		roadClass, hasHighway := way.Tags[tagHighway]
		if !hasHighway {
			continue
		}
		if len(way.NodeIDs) < 2 {
			// Ways with fewer than two nodes can't form an edge; drop them.
			continue
		}

		wi := wayInfo{
			id:        way.ID,
			nodeIDs:   append([]int64(nil), way.NodeIDs...),
			roadClass: roadClass,
			oneway:    way.Tags[tagOneway] == tagYes,
			name:      way.Tags["name"],
		}
		if ms, ok := way.Tags[tagMaxspeed]; ok {
			if v, perr := strconv.ParseFloat(ms, 64); perr == nil {
				wi.maxspeedCar = v
			}
		}
		ways = append(ways, wi)

		counted := make(map[int64]bool, len(wi.nodeIDs))
		for i, id := range wi.nodeIDs {
			if !counted[id] {
				touches[id]++
				counted[id] = true
			}
			if i == 0 || i == len(wi.nodeIDs)-1 {
				endpoint[id] = true
			}
		}
	}

	return ways, touches, endpoint, nil
}

// scanNodes decodes path a second time, collecting coordinates and any
// traffic-control tag for every OSM node id present in wanted.
func scanNodes(path string, wanted map[int64]bool) (map[int64]osmNode, error) {
	d, f, err := openDecoder(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[int64]osmNode, len(wanted))
	for {
		obj, decErr := d.Decode()
		if decErr == io.EOF {
			break
		}
		if decErr != nil {
			return nil, apierr.Wrap(apierr.ParseError, fmt.Errorf("graphbuild: decode %s: %w", path, decErr))
		}

		node, ok := obj.(*osmpbf.Node)
		if !ok {
			continue
		}
		if !wanted[node.ID] {
			continue
		}
		control := controlNone
		if v, ok := node.Tags[tagHighway]; ok {
			control = controlFromHighwayTag(v)
		}
		out[node.ID] = osmNode{lat: node.Lat, lng: node.Lon, control: control}
	}
	return out, nil
}
