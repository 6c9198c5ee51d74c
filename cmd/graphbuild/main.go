// Command graphbuild builds a routable graph from an OSM PBF extract,
// writing graph.bin, location.bin and description.bin to an output
// directory.
package main

import (
	"flag"
	"path/filepath"
	"time"

	"github.com/osmroute/osmroute/graphbuild"
	"go.uber.org/zap"
)

func main() {
	pbfPath := flag.String("osm", "", "path to the .osm.pbf extract")
	outDir := flag.String("out", ".", "directory to write graph.bin/location.bin/description.bin into")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	if *pbfPath == "" {
		log.Fatal("missing required -osm flag")
	}

	blobs, err := graphbuild.Build(*pbfPath, log)
	if err != nil {
		log.Fatalw("build failed", "error", err)
	}
	blobs.Graph.BuiltAt = time.Now().UTC()

	writeOrDie(log, filepath.Join(*outDir, "graph.bin"), blobs.Graph)
	writeOrDie(log, filepath.Join(*outDir, "location.bin"), blobs.Location)
	writeOrDie(log, filepath.Join(*outDir, "description.bin"), blobs.Description)

	log.Infow("graphbuild finished",
		"nodes", len(blobs.Graph.Nodes),
		"edges", len(blobs.Graph.Edges),
	)
}

func writeOrDie(log *zap.SugaredLogger, path string, v any) {
	if err := graphbuild.WriteBlob(path, v); err != nil {
		log.Fatalw("failed writing blob", "path", path, "error", err)
	}
}
