// Package geocode provides deterministic pseudo-geocoding for display
// coordinates. It maps free-text addresses to stable points inside a fixed
// bounding box covering Turkey, without calling a real geocoding service.
package geocode

import (
	"math"
	"math/rand/v2"
)

// Bounding box for derived coordinates (Turkey).
const (
	MinLat = 36.0
	MaxLat = 42.0
	MinLon = 26.0
	MaxLon = 45.0
)

// KmPerDegree is the flat-earth approximation used to convert distances to
// degrees. Intentionally inexact; display coordinates only.
const KmPerDegree = 111.0

// Coordinate is a geographic point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// InBounds reports whether the coordinate lies inside the Turkey bounding box.
func (c Coordinate) InBounds() bool {
	return c.Lat >= MinLat && c.Lat <= MaxLat && c.Lon >= MinLon && c.Lon <= MaxLon
}

// Geocode derives a stable coordinate from an address string. The same
// address always maps to the same point; different addresses scatter across
// the bounding box. The empty string maps to the box's minimum corner.
//
// The hash is a rolling polynomial with 32-bit wraparound (h = h*31 + c).
// Callers compare results across runs, so the recurrence must not change.
func Geocode(address string) Coordinate {
	var h int32
	for _, r := range address {
		h = h<<5 - h + int32(r)
	}

	lat := MinLat + float64(abs32(h)%1000)/1000.0*(MaxLat-MinLat)
	lon := MinLon + float64(abs32(h>>10)%1000)/1000.0*(MaxLon-MinLon)

	return Coordinate{Lat: lat, Lon: lon}
}

// NearbyPoint returns a point a roughly distanceKm away from center in a
// random direction. The actual offset is drawn from [0.5, 1.0] of the
// requested distance and applied as a planar (non-geodesic) displacement.
// Not deterministic; each call draws fresh randomness.
//
// Negative distances mirror the offset. Callers are expected to pass
// non-negative values.
func NearbyPoint(center Coordinate, distanceKm float64) Coordinate {
	angle := rand.Float64() * 2 * math.Pi
	scale := 0.5 + rand.Float64()*0.5

	distanceDeg := distanceKm * scale / KmPerDegree

	return Coordinate{
		Lat: center.Lat + distanceDeg*math.Cos(angle),
		Lon: center.Lon + distanceDeg*math.Sin(angle),
	}
}

// abs32 returns the absolute value of v, widening first so that
// math.MinInt32 does not overflow.
func abs32(v int32) int64 {
	w := int64(v)
	if w < 0 {
		return -w
	}
	return w
}
