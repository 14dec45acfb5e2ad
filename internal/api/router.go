// Package api provides the HTTP API for CarbonChain.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/carbonchain/carbonchain/internal/advisor"
	"github.com/carbonchain/carbonchain/internal/api/handler"
	"github.com/carbonchain/carbonchain/internal/api/middleware"
	"github.com/carbonchain/carbonchain/internal/factory"
	"github.com/carbonchain/carbonchain/internal/impact"
	"github.com/carbonchain/carbonchain/internal/routing"
	"github.com/carbonchain/carbonchain/internal/supplier"
	"github.com/carbonchain/carbonchain/internal/upstream"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version         string
	BuildTime       string
	Logger          zerolog.Logger
	ServiceName     string
	Metrics         *middleware.Metrics
	RoutingService  *routing.Service
	SupplierService *supplier.Service
	Aggregator      *impact.Aggregator
	FactoryAnalyzer *factory.Analyzer
	AdvisorService  *advisor.Service
	Registry        *upstream.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "carbonchain-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)
	routeHandler := handler.NewRouteHandler(cfg.RoutingService)
	supplierHandler := handler.NewSupplierHandler(cfg.SupplierService)
	impactHandler := handler.NewImpactHandler(cfg.Aggregator, cfg.AdvisorService)
	emissionsHandler := handler.NewEmissionsHandler(cfg.FactoryAnalyzer)
	catalogHandler := handler.NewCatalogHandler()

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Catalog endpoints - standard rate limiting
		r.Route("/catalog", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/sectors", catalogHandler.ListSectors)
			r.Get("/provinces", catalogHandler.ListProvinces)
		})

		// Survey endpoints - the national read serves cached data, the
		// per-province survey can fan out to the facility provider
		r.Route("/emissions/provinces", func(r chi.Router) {
			r.With(standardRateLimit).Get("/", emissionsHandler.NationalSurvey)
			r.With(expensiveRateLimit).Get("/{province}", emissionsHandler.ProvinceSurvey)
		})

		// Impact analysis is pure computation - standard rate limiting
		r.With(standardRateLimit).Post("/impact:analyze", impactHandler.AnalyzeImpact)

		// Endpoints that fan out to collaborator services - strict rate limiting
		r.With(expensiveRateLimit).Post("/routes:optimize", routeHandler.OptimizeRoutes)
		r.With(expensiveRateLimit).Post("/suppliers:search", supplierHandler.SearchSuppliers)
		r.With(expensiveRateLimit).Post("/impact:advise", impactHandler.AdviseImpact)
	})

	return r
}
