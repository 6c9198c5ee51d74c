// Command snapbuild builds a spatial snap index over a Location blob,
// writing one snap_bucket_<token>.bin file per outer cell to an output
// directory.
package main

import (
	"flag"
	"os"

	"github.com/osmroute/osmroute/graphbuild"
	"github.com/osmroute/osmroute/snapindex"
	"go.uber.org/zap"
)

func main() {
	locationPath := flag.String("location", "", "path to location.bin, produced by graphbuild")
	outDir := flag.String("out", "./snapbuckets", "directory to write snap_bucket_<token>.bin files into")
	outerLevel := flag.Int("outer-level", 4, "outer cell level (one file per outer cell)")
	innerLevel := flag.Int("inner-level", 8, "inner cell level (one bucket per inner cell)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	if *locationPath == "" {
		log.Fatal("missing required -location flag")
	}

	var location graphbuild.LocationBlob
	if err := graphbuild.ReadBlob(*locationPath, &location); err != nil {
		log.Fatalw("failed reading location blob", "error", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalw("failed creating output directory", "dir", *outDir, "error", err)
	}

	files, err := snapindex.Build(location.EdgeLocations, *outerLevel, *innerLevel)
	if err != nil {
		log.Fatalw("snapindex build failed", "error", err)
	}

	if err := snapindex.WriteAll(*outDir, files); err != nil {
		log.Fatalw("failed writing snap bucket files", "error", err)
	}

	log.Infow("snapbuild finished", "outer_files", len(files), "edges", len(location.EdgeLocations))
}
