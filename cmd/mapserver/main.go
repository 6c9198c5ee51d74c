// Command mapserver serves snap and route lookups over a thin JSON/HTTP
// transport.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/osmroute/osmroute/internal/apierr"
	"github.com/osmroute/osmroute/internal/config"
	"github.com/osmroute/osmroute/routeservice"
	"github.com/osmroute/osmroute/snapservice"
	"go.uber.org/zap"
)

type server struct {
	snap  *snapservice.Service
	route *routeservice.Service
	log   *zap.SugaredLogger
}

type snapRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type snapResponse struct {
	EdgeIndex uint32  `json:"edge_index"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Snapped   bool    `json:"snapped"`
}

func (s *server) handleSnap(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	log := s.log.With("request_id", requestID)

	var req snapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, log, apierr.Wrap(apierr.ParseError, err))
		return
	}

	res, err := s.snap.Snap(r.Context(), req.Lat, req.Lng)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusOK, snapResponse{EdgeIndex: res.EdgeIndex, Lat: res.Lat, Lng: res.Lng, Snapped: res.Snapped})
}

type routeRequest struct {
	StartEdgeIdx uint32 `json:"start_edge_idx"`
	EndEdgeIdx   uint32 `json:"end_edge_idx"`
	K            int    `json:"k"`
}

type routePath struct {
	Edges []uint32 `json:"edges"`
	Nodes []uint32 `json:"nodes"`
}

type routeResponse struct {
	Paths []routePath `json:"paths"`
}

func (s *server) handleRoute(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	log := s.log.With("request_id", requestID)

	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, log, apierr.Wrap(apierr.ParseError, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	paths, err := s.route.Route(ctx, req.StartEdgeIdx, req.EndEdgeIdx, req.K)
	if err != nil {
		writeError(w, log, err)
		return
	}

	resp := routeResponse{Paths: make([]routePath, len(paths))}
	for i, p := range paths {
		resp.Paths[i] = routePath{Edges: p.Edges, Nodes: p.Nodes}
	}
	writeJSON(w, log, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, log *zap.SugaredLogger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorw("failed encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	status := http.StatusInternalServerError
	switch {
	case apierr.Is(err, apierr.ParseError), apierr.Is(err, apierr.OutOfRange):
		status = http.StatusBadRequest
	case apierr.Is(err, apierr.NotLoaded):
		status = http.StatusServiceUnavailable
	case apierr.Is(err, apierr.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	log.Warnw("request failed", "status", status, "error", err)
	http.Error(w, err.Error(), status)
}

func main() {
	configPath := flag.String("config", "mapserver.yaml", "path to the YAML start-up configuration file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	snap, err := snapservice.Load(cfg.SnapBucketsDir, cfg.OuterCellLevel, cfg.InnerCellLevel, log)
	if err != nil {
		log.Fatalw("failed loading snap buckets", "error", err)
	}

	route, err := routeservice.Load(cfg.GraphPath, log)
	if err != nil {
		log.Fatalw("failed loading graph", "error", err)
	}

	srv := &server{snap: snap, route: route, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/snap", srv.handleSnap)
	mux.HandleFunc("/route", srv.handleRoute)

	log.Infow("mapserver listening", "address", cfg.ListenAddress)
	if err := http.ListenAndServe(cfg.ListenAddress, mux); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
