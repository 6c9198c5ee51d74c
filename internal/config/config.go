// Package config loads the mapserver's start-up configuration from a YAML
// file.
package config

import (
	"fmt"
	"os"

	"github.com/osmroute/osmroute/cellspace"
	"github.com/osmroute/osmroute/internal/apierr"
	"gopkg.in/yaml.v3"
)

// MapServer is the full set of fields mapserver needs at start-up.
type MapServer struct {
	SnapBucketsDir string `yaml:"snap_buckets_dir"`
	GraphPath      string `yaml:"graph_path"`
	OuterCellLevel int    `yaml:"outer_cell_level"`
	InnerCellLevel int    `yaml:"inner_cell_level"`
	ListenAddress  string `yaml:"listen_address"`
}

// Default returns the baseline configuration (outer level 4, inner level 8).
func Default() MapServer {
	return MapServer{
		SnapBucketsDir: "./snapbuckets",
		GraphPath:      "./graph.bin",
		OuterCellLevel: 4,
		InnerCellLevel: 8,
		ListenAddress:  "127.0.0.1:8080",
	}
}

// Load reads path as YAML over Default(), then validates it. A missing
// file is not an error: the caller runs on defaults.
func Load(path string) (MapServer, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return cfg, apierr.Wrap(apierr.IOError, fmt.Errorf("config: reading %s: %w", path, err))
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, apierr.Wrap(apierr.ParseError, fmt.Errorf("config: parsing %s: %w", path, err))
	}

	return cfg, cfg.Validate()
}

// Validate checks the cell-level ordering:
// outer_cell_level < inner_cell_level <= max level.
func (c MapServer) Validate() error {
	if c.OuterCellLevel < 0 || c.InnerCellLevel < 0 {
		return apierr.Wrap(apierr.ParseError, fmt.Errorf("config: cell levels must be non-negative"))
	}
	if c.OuterCellLevel >= c.InnerCellLevel {
		return apierr.Wrap(apierr.ParseError, fmt.Errorf("config: outer_cell_level (%d) must be < inner_cell_level (%d)", c.OuterCellLevel, c.InnerCellLevel))
	}
	if c.InnerCellLevel > cellspace.MaxLevel {
		return apierr.Wrap(apierr.ParseError, fmt.Errorf("config: inner_cell_level (%d) exceeds max level (%d)", c.InnerCellLevel, cellspace.MaxLevel))
	}
	if c.GraphPath == "" || c.SnapBucketsDir == "" || c.ListenAddress == "" {
		return apierr.Wrap(apierr.ParseError, fmt.Errorf("config: graph_path, snap_buckets_dir and listen_address are required"))
	}
	return nil
}
