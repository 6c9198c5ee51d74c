// Package cellspace wraps github.com/golang/geo/s2 behind the spherical
// cell primitives the rest of the system is built on: every node, edge
// point and snap bucket is keyed by a CellId, and ordering by CellId is
// what gives the on-disk layout its spatial locality. No other package may
// construct a CellId from raw bits; they flow only through this package.
package cellspace

import (
	"github.com/golang/geo/s2"
	"github.com/umahmood/haversine"
)

// EarthRadiusMeters is the spherical earth radius used for every geographic
// distance computation in the system. Angular distance (radians) times this
// constant gives meters.
const EarthRadiusMeters = 6371000.0

// MaxLevel is the finest S2 cell level CellId ever operates at.
const MaxLevel = 30

// CellId is an opaque identifier of a cell in a hierarchical partition of
// the sphere. It is a thin value wrapper over s2.CellID so that callers
// never have to import github.com/golang/geo/s2 themselves.
type CellId uint64

// Invalid is the zero CellId; no valid cell ever encodes to it.
const Invalid CellId = 0

// FromLatLng returns the CellId of (lat, lng) in degrees at MaxLevel.
func FromLatLng(lat, lng float64) CellId {
	ll := s2.LatLngFromDegrees(lat, lng)
	return CellId(s2.CellFromLatLng(ll).ID())
}

// Parent returns the strict ancestor of c at the given level. Calling
// Parent(L) on a cell already at a level shallower than L is undefined per
// the s2 contract and is the caller's responsibility to avoid; in practice
// every caller in this codebase only ever narrows towards MaxLevel.
func (c CellId) Parent(level int) CellId {
	return CellId(s2.CellID(c).Parent(level))
}

// Level returns the level of c, in [0, MaxLevel].
func (c CellId) Level() int {
	return s2.CellID(c).Level()
}

// Token returns the stable textual form of c. Tokens order compatibly with
// CellId's own numeric ordering, which is what makes sorting-by-token a
// valid substitute for sorting-by-id throughout the build pipeline.
func (c CellId) Token() string {
	return s2.CellID(c).ToToken()
}

// FromToken parses a token previously produced by Token back into a CellId.
func FromToken(token string) CellId {
	return CellId(s2.CellIDFromToken(token))
}

// Center returns the (lat, lng) in degrees of c's cell center.
func (c CellId) Center() (lat, lng float64) {
	ll := s2.CellID(c).LatLng()
	return ll.Lat.Degrees(), ll.Lng.Degrees()
}

// Valid reports whether c is a well-formed S2 cell id.
func (c CellId) Valid() bool {
	return s2.CellID(c).IsValid()
}

// AngularDistance returns the geodesic angular distance between the centers
// of a and b, in radians. Multiply by EarthRadiusMeters to get meters.
//
// This is computed via the haversine formula rather than s2's own Angle
// method; the result is converted from kilometers back to radians so every
// distance in the system shares one formula and one earth radius.
func (a CellId) AngularDistance(b CellId) float64 {
	latA, lngA := a.Center()
	latB, lngB := b.Center()
	_, km := haversine.Distance(
		haversine.Coord{Lat: latA, Lon: lngA},
		haversine.Coord{Lat: latB, Lon: lngB},
	)
	return (km * 1000.0) / EarthRadiusMeters
}

// AllNeighbors returns the cells at the given level that are adjacent to c's
// parent at that level, including diagonal neighbors. It is the primitive
// snapservice uses to probe neighboring cells on a local miss.
func (c CellId) AllNeighbors(level int) []CellId {
	id := s2.CellID(c)
	if id.Level() > level {
		id = id.Parent(level)
	}
	raw := id.AllNeighbors(level)
	out := make([]CellId, len(raw))
	for i, n := range raw {
		out[i] = CellId(n)
	}
	return out
}
