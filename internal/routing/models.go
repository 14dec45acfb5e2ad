// Package routing plans delivery routes from an origin address to a set of
// destinations and attributes CO2e emissions to each leg.
package routing

import (
	"context"
	"errors"

	"github.com/carbonchain/carbonchain/internal/geocode"
	"github.com/carbonchain/carbonchain/internal/impact"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the routing provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no valid route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrEmptyOrigin indicates the origin address was missing.
	ErrEmptyOrigin = errors.New("origin address is required")
	// ErrNoDestinations indicates the destination list was empty.
	ErrNoDestinations = errors.New("at least one destination is required")
)

// Provider defines the interface for road-distance providers.
type Provider interface {
	// Route computes the driving leg between two coordinates.
	Route(ctx context.Context, origin, destination geocode.Coordinate) (*Leg, error)
	// Name returns the provider identifier for logging and health checks.
	Name() string
}

// Leg is a single origin-to-destination driving result.
type Leg struct {
	DistanceKm  float64
	DurationMin float64
}

// Route is one planned route with display coordinates and attributed emissions.
type Route struct {
	Origin           string             `json:"origin"`
	Destination      string             `json:"destination"`
	OriginCoord      geocode.Coordinate `json:"origin_coord"`
	DestinationCoord geocode.Coordinate `json:"destination_coord"`
	DistanceKm       float64            `json:"distance_km"`
	DurationMin      float64            `json:"duration_min"`
	EmissionsKgCO2e  float64            `json:"emissions_kg_co2e"`

	// Estimated is set when the routing engine was unavailable and the
	// distance is a great-circle estimate instead of a road distance.
	Estimated bool `json:"estimated,omitempty"`
}

// Result converts the route to the aggregator's input shape.
func (r Route) Result() impact.RouteResult {
	return impact.RouteResult{
		Origin:          r.Origin,
		Destination:     r.Destination,
		DistanceKm:      r.DistanceKm,
		DurationMin:     r.DurationMin,
		EmissionsKgCO2e: r.EmissionsKgCO2e,
	}
}

// Plan is the full result of optimizing one origin against a destination list.
type Plan struct {
	Origin               string   `json:"origin"`
	Routes               []Route  `json:"optimized_routes"`
	TotalEmissionsKgCO2e float64  `json:"total_emissions"`
	Warnings             []string `json:"warnings,omitempty"`
}

// Results converts all routes to the aggregator's input shape.
func (p *Plan) Results() []impact.RouteResult {
	results := make([]impact.RouteResult, 0, len(p.Routes))
	for _, r := range p.Routes {
		results = append(results, r.Result())
	}
	return results
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
