// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/carbonchain/carbonchain/internal/impact"
)

// Config holds the runtime configuration for the CarbonChain services.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// Environment is the deployment environment (development, production).
	Environment string

	// OTLPEndpoint is the OpenTelemetry collector endpoint.
	OTLPEndpoint string

	// TelemetryEnabled toggles OTLP export.
	TelemetryEnabled bool

	// OSRMBaseURL is the base URL of the OSRM routing collaborator.
	OSRMBaseURL string

	// OverpassBaseURL is the base URL of the Overpass supplier directory.
	OverpassBaseURL string

	// OpenRouterAPIKey authenticates the narrative-advice collaborator.
	// Empty disables the advisor; numeric output is unaffected.
	OpenRouterAPIKey string

	// OpenRouterModel is the chat model used for advice generation.
	OpenRouterModel string

	// TruckEmissionFactor is the kg CO2e attributed per route kilometer.
	TruckEmissionFactor float64

	// LocalThresholdKm is the local-sourcing distance threshold.
	LocalThresholdKm float64

	// ScorePolicy is the environmental-impact score weighting.
	ScorePolicy impact.ScorePolicy

	// SupplierDistanceWeight and SupplierBaselineWeight combine the
	// distance score and the environmental baseline into a supplier's
	// sustainability score.
	SupplierDistanceWeight float64
	SupplierBaselineWeight float64

	// SupplierEnvironmentalBaseline is the assumed environmental score for
	// suppliers without measured data.
	SupplierEnvironmentalBaseline float64

	// SurveyCacheTTL is how long factory survey snapshots are cached.
	SurveyCacheTTL time.Duration
}

// FromEnv creates a Config from environment variables, applying defaults for
// anything unset.
func FromEnv() Config {
	return Config{
		Port:             getEnvOrDefault("APP_PORT", "8080"),
		Environment:      getEnvOrDefault("APP_ENV", "development"),
		OTLPEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",

		OSRMBaseURL:      getEnvOrDefault("OSRM_BASE_URL", "http://router.project-osrm.org"),
		OverpassBaseURL:  getEnvOrDefault("OVERPASS_BASE_URL", "https://overpass-api.de/api/interpreter"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:  getEnvOrDefault("OPENROUTER_MODEL", "openai/gpt-5-nano"),

		TruckEmissionFactor: getEnvFloat("TRUCK_EMISSION_FACTOR", 0.85),
		LocalThresholdKm:    getEnvFloat("LOCAL_THRESHOLD_KM", 50),

		ScorePolicy: impact.ScorePolicy{
			Base:                 getEnvFloat("IMPACT_SCORE_BASE", 100),
			EmissionsDivisor:     getEnvFloat("IMPACT_EMISSIONS_DIVISOR", 1000),
			SustainabilityWeight: getEnvFloat("IMPACT_SUSTAINABILITY_WEIGHT", 0.5),
			LocalBonus:           getEnvFloat("IMPACT_LOCAL_BONUS", 25),
			Unclamped:            os.Getenv("SCORE_POLICY") == "legacy",
		},

		SupplierDistanceWeight:        getEnvFloat("SUPPLIER_DISTANCE_WEIGHT", 0.6),
		SupplierBaselineWeight:        getEnvFloat("SUPPLIER_BASELINE_WEIGHT", 0.4),
		SupplierEnvironmentalBaseline: getEnvFloat("SUPPLIER_ENV_BASELINE", 75),

		SurveyCacheTTL: getEnvDuration("SURVEY_CACHE_TTL", 6*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
