// Package factory surveys industrial facilities across Turkish provinces and
// estimates their annual carbon emissions by sector.
package factory

import (
	"errors"
	"time"

	"github.com/carbonchain/carbonchain/internal/geocode"
)

// Sentinel errors for factory surveys.
var (
	// ErrUnknownProvince indicates the requested province is not surveyed.
	ErrUnknownProvince = errors.New("unknown province")
	// ErrProviderUnavailable indicates the facility provider is down.
	ErrProviderUnavailable = errors.New("facility provider unavailable")
)

// Factory is one surveyed facility with estimated emissions.
type Factory struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Sector      Sector             `json:"sector"`
	SizeM2      int                `json:"size_m2"`
	Coordinates geocode.Coordinate `json:"coordinates"`
	DistanceKm  float64            `json:"distance_km"`

	// EmissionFactor is the sector intensity in kg CO2e/m2/yr.
	EmissionFactor float64 `json:"emission_factor_kg_co2e_m2_yr"`

	AnnualEmissionsTon  float64 `json:"annual_emissions_ton"`
	MonthlyEmissionsTon float64 `json:"monthly_emissions_ton"`
	DailyEmissionsTon   float64 `json:"daily_emissions_ton"`

	// Approximate is set when the facility position was synthesized near
	// the province center.
	Approximate bool `json:"approximate,omitempty"`
}

// ProvinceSurvey aggregates factory emissions for one province.
type ProvinceSurvey struct {
	Province                  string    `json:"province"`
	RadiusKm                  float64   `json:"radius_km"`
	FactoryCount              int       `json:"factory_count"`
	Factories                 []Factory `json:"factories"`
	TotalAnnualEmissionsTon   float64   `json:"total_annual_emissions_ton"`
	AverageAnnualEmissionsTon float64   `json:"average_annual_emissions_ton"`
	SurveyedAt                time.Time `json:"surveyed_at"`
}

// NationalSurvey aggregates all cached province surveys.
type NationalSurvey struct {
	Provinces                 []string         `json:"provinces"`
	SurveyedProvinceCount     int              `json:"surveyed_province_count"`
	TotalFactoryCount         int              `json:"total_factory_count"`
	TotalAnnualEmissionsTon   float64          `json:"total_annual_emissions_ton"`
	AverageAnnualEmissionsTon float64          `json:"average_annual_emissions_ton"`
	ProvinceSurveys           []ProvinceSurvey `json:"province_surveys"`
}
