// Package main provides the entrypoint for the CarbonChain API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonchain/carbonchain/internal/advisor"
	"github.com/carbonchain/carbonchain/internal/advisor/openrouter"
	"github.com/carbonchain/carbonchain/internal/api"
	"github.com/carbonchain/carbonchain/internal/api/middleware"
	"github.com/carbonchain/carbonchain/internal/config"
	"github.com/carbonchain/carbonchain/internal/factory"
	"github.com/carbonchain/carbonchain/internal/impact"
	"github.com/carbonchain/carbonchain/internal/routing"
	"github.com/carbonchain/carbonchain/internal/routing/osrm"
	"github.com/carbonchain/carbonchain/internal/supplier"
	"github.com/carbonchain/carbonchain/internal/supplier/overpass"
	"github.com/carbonchain/carbonchain/internal/telemetry"
	"github.com/carbonchain/carbonchain/internal/upstream"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "carbonchain-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting CarbonChain API")

	cfg := config.FromEnv()

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Collaborator registry backing the ops status endpoint
	registry := upstream.NewRegistry()

	// Routing service on the OSRM collaborator
	osrmClient := osrm.NewClient(osrm.ClientConfig{
		BaseURL:  cfg.OSRMBaseURL,
		Registry: registry,
		Logger:   log,
	})
	routingService := routing.NewService(routing.ServiceConfig{
		Provider:              osrmClient,
		Logger:                log,
		EmissionFactorKgPerKm: cfg.TruckEmissionFactor,
	})
	log.Info().Str("base_url", cfg.OSRMBaseURL).Msg("routing service initialized")

	// Supplier discovery on the Overpass collaborator
	overpassClient := overpass.NewClient(overpass.ClientConfig{
		BaseURL:  cfg.OverpassBaseURL,
		Registry: registry,
		Logger:   log,
	})
	supplierService := supplier.NewService(supplier.ServiceConfig{
		Provider:              overpassClient,
		Logger:                log,
		DistanceWeight:        cfg.SupplierDistanceWeight,
		BaselineWeight:        cfg.SupplierBaselineWeight,
		EnvironmentalBaseline: cfg.SupplierEnvironmentalBaseline,
		DefaultRadiusKm:       cfg.LocalThresholdKm,
	})
	log.Info().Str("base_url", cfg.OverpassBaseURL).Msg("supplier service initialized")

	// Factory survey shares the Overpass collaborator
	analyzer := factory.NewAnalyzer(factory.AnalyzerConfig{
		Provider: overpassClient,
		Logger:   log,
		CacheTTL: cfg.SurveyCacheTTL,
	})

	// Impact aggregation
	aggregator := impact.NewAggregator(impact.Config{
		LocalThresholdKm: cfg.LocalThresholdKm,
		Policy:           cfg.ScorePolicy,
	})

	// Narrative advice (optional, disabled without an API key)
	var chatProvider advisor.ChatProvider
	if cfg.OpenRouterAPIKey != "" {
		chatProvider = openrouter.NewClient(openrouter.ClientConfig{
			APIKey:   cfg.OpenRouterAPIKey,
			Model:    cfg.OpenRouterModel,
			Registry: registry,
			Logger:   log,
		})
		log.Info().Str("model", cfg.OpenRouterModel).Msg("advisor initialized")
	} else {
		log.Warn().Msg("OPENROUTER_API_KEY not set - advice endpoints serve fallback guidance")
	}
	advisorService := advisor.NewService(advisor.ServiceConfig{
		Provider: chatProvider,
		Logger:   log,
	})

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		RoutingService:  routingService,
		SupplierService: supplierService,
		Aggregator:      aggregator,
		FactoryAnalyzer: analyzer,
		AdvisorService:  advisorService,
		Registry:        registry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
