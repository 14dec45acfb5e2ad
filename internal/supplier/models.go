// Package supplier discovers industrial facilities near a location and ranks
// them for sustainable sourcing.
package supplier

import (
	"context"
	"errors"

	"github.com/carbonchain/carbonchain/internal/geocode"
	"github.com/carbonchain/carbonchain/internal/impact"
)

// Sentinel errors for supplier discovery.
var (
	// ErrProviderUnavailable indicates the facility provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("facility provider unavailable")
	// ErrEmptyLocation indicates the search location was missing.
	ErrEmptyLocation = errors.New("location is required")
)

// Provider defines the interface for industrial facility providers.
type Provider interface {
	// IndustrialFacilities returns raw facilities within radiusKm of center.
	IndustrialFacilities(ctx context.Context, center geocode.Coordinate, radiusKm float64) ([]Facility, error)
	// Name returns the provider identifier for logging and health checks.
	Name() string
}

// Facility is a raw facility as reported by the provider.
type Facility struct {
	ID   int64
	Kind string // node, way or relation
	Name string
	Tags map[string]string

	// Coord is nil when the provider has no geometry for the element.
	Coord *geocode.Coordinate
}

// Supplier is a ranked facility candidate.
type Supplier struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`

	// SustainabilityScore is the ranking composite: distance score weighted
	// against the environmental baseline.
	SustainabilityScore float64            `json:"sustainability_score"`
	Coordinates         geocode.Coordinate `json:"coordinates"`

	// Approximate is set when the provider had no geometry and the
	// position was synthesized near the search center.
	Approximate bool `json:"approximate,omitempty"`
}

// Result converts the supplier to the aggregator's input shape.
func (s Supplier) Result() impact.SupplierResult {
	coord := s.Coordinates
	return impact.SupplierResult{
		ID:                  s.ID,
		Name:                s.Name,
		DistanceKm:          s.DistanceKm,
		SustainabilityScore: s.SustainabilityScore,
		Coordinates:         &coord,
	}
}

// SearchResult is the full result of a supplier search.
type SearchResult struct {
	ProductType string             `json:"product_type,omitempty"`
	Location    string             `json:"location"`
	Center      geocode.Coordinate `json:"center"`
	RadiusKm    float64            `json:"radius_km"`
	Suppliers   []Supplier         `json:"suppliers"`
}

// Results converts all suppliers to the aggregator's input shape.
func (r *SearchResult) Results() []impact.SupplierResult {
	results := make([]impact.SupplierResult, 0, len(r.Suppliers))
	for _, s := range r.Suppliers {
		results = append(results, s.Result())
	}
	return results
}
