// Package impact aggregates route and supplier result sets into a combined
// environmental-impact summary.
package impact

import "github.com/carbonchain/carbonchain/internal/geocode"

// RouteResult is a single optimized route with its attributed emissions.
type RouteResult struct {
	Origin          string  `json:"origin"`
	Destination     string  `json:"destination"`
	DistanceKm      float64 `json:"distance_km"`
	DurationMin     float64 `json:"duration_min,omitempty"`
	EmissionsKgCO2e float64 `json:"emissions_kg_co2e"`
}

// SupplierResult is a discovered supplier with its sustainability rating.
type SupplierResult struct {
	ID                  string              `json:"id,omitempty"`
	Name                string              `json:"name,omitempty"`
	DistanceKm          float64             `json:"distance_km"`
	SustainabilityScore float64             `json:"sustainability_score"`
	Coordinates         *geocode.Coordinate `json:"coordinates,omitempty"`
}

// Summary is the combined environmental-impact analysis of a route set and a
// supplier set.
type Summary struct {
	TotalEmissionsKgCO2e      float64 `json:"total_emissions_kg_co2e"`
	AvgSupplierSustainability float64 `json:"avg_supplier_sustainability"`
	LocalSourcingRatio        float64 `json:"local_sourcing_ratio"`
	EnvironmentalImpactScore  float64 `json:"environmental_impact_score"`
}

// ScorePolicy controls how the composite environmental-impact score is
// derived from the aggregates. The score is presentation-facing and
// policy-sensitive, so the weighting is configuration rather than code.
type ScorePolicy struct {
	// Base is the starting score before adjustments.
	Base float64

	// EmissionsDivisor normalizes total emissions before subtracting them
	// from the score (kg CO2e per score point).
	EmissionsDivisor float64

	// SustainabilityWeight is the fraction of the average supplier
	// sustainability added to the score.
	SustainabilityWeight float64

	// LocalBonus is the maximum score contribution of a fully local
	// supplier base (ratio of 1.0).
	LocalBonus float64

	// Unclamped disables the [0,100] clamp on the final score and
	// reproduces the historical raw arithmetic.
	Unclamped bool
}

// DefaultScorePolicy returns the default scoring policy.
func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{
		Base:                 100,
		EmissionsDivisor:     1000,
		SustainabilityWeight: 0.5,
		LocalBonus:           25,
	}
}

// Config holds configuration for the aggregator.
type Config struct {
	// LocalThresholdKm is the distance below which a supplier counts as
	// local (default: 50).
	LocalThresholdKm float64

	// Policy is the impact-score weighting (default: DefaultScorePolicy).
	Policy ScorePolicy
}

// Aggregator combines independently obtained route and supplier result sets.
type Aggregator struct {
	localThresholdKm float64
	policy           ScorePolicy
}

// NewAggregator creates an Aggregator with the given configuration.
func NewAggregator(cfg Config) *Aggregator {
	if cfg.LocalThresholdKm <= 0 {
		cfg.LocalThresholdKm = 50
	}
	if p := cfg.Policy; p == (ScorePolicy{}) || p == (ScorePolicy{Unclamped: true}) {
		cfg.Policy = DefaultScorePolicy()
		cfg.Policy.Unclamped = p.Unclamped
	}
	return &Aggregator{
		localThresholdKm: cfg.LocalThresholdKm,
		policy:           cfg.Policy,
	}
}

// LocalThresholdKm returns the configured local-sourcing distance threshold.
func (a *Aggregator) LocalThresholdKm() float64 {
	return a.localThresholdKm
}

// Aggregate computes the combined summary for the given result sets. Empty
// inputs produce a well-formed zero-valued summary; the impact score is
// always defined. Score bounds of the inputs are trusted, not validated.
func (a *Aggregator) Aggregate(routes []RouteResult, suppliers []SupplierResult) Summary {
	var totalEmissions float64
	for _, r := range routes {
		totalEmissions += r.EmissionsKgCO2e
	}

	var avgSustainability float64
	var localRatio float64
	if len(suppliers) > 0 {
		var sum float64
		local := 0
		for _, s := range suppliers {
			sum += s.SustainabilityScore
			if s.DistanceKm < a.localThresholdKm {
				local++
			}
		}
		avgSustainability = sum / float64(len(suppliers))
		localRatio = float64(local) / float64(len(suppliers))
	}

	score := a.policy.Base -
		totalEmissions/a.policy.EmissionsDivisor +
		avgSustainability*a.policy.SustainabilityWeight +
		localRatio*a.policy.LocalBonus
	if !a.policy.Unclamped {
		score = clamp(score, 0, 100)
	}

	return Summary{
		TotalEmissionsKgCO2e:      totalEmissions,
		AvgSupplierSustainability: avgSustainability,
		LocalSourcingRatio:        localRatio,
		EnvironmentalImpactScore:  score,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
