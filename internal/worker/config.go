// Package worker provides background job processing for CarbonChain.
package worker

import (
	"time"

	"github.com/carbonchain/carbonchain/internal/factory"
)

// SurveyConfig holds configuration for the province survey job.
type SurveyConfig struct {
	// Provinces are the provinces to survey. If empty, surveys all of them.
	Provinces []string

	// MaxProvinces caps how many provinces one run surveys (0 = no cap).
	MaxProvinces int

	// RadiusKm is the facility search radius per province.
	// Default: 30
	RadiusKm float64

	// Concurrency is the number of concurrent province surveys.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each province survey.
	// Default: 60 seconds
	Timeout time.Duration
}

// DefaultSurveyConfig returns the default survey configuration.
func DefaultSurveyConfig() SurveyConfig {
	return SurveyConfig{
		Provinces:   factory.Provinces(),
		RadiusKm:    30,
		Concurrency: 3,
		Timeout:     60 * time.Second,
	}
}

// TargetProvinces returns the provinces this run covers, after the cap.
func (c SurveyConfig) TargetProvinces() []string {
	provinces := c.Provinces
	if len(provinces) == 0 {
		provinces = factory.Provinces()
	}
	if c.MaxProvinces > 0 && len(provinces) > c.MaxProvinces {
		provinces = provinces[:c.MaxProvinces]
	}
	return provinces
}
