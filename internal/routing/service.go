package routing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonchain/carbonchain/internal/geocode"
	"github.com/carbonchain/carbonchain/pkg/geodist"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the road-distance provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// EmissionFactorKgPerKm converts driven kilometers to kg CO2e
	// (default: 0.85, a loaded medium truck).
	EmissionFactorKgPerKm float64

	// CacheTTL is how long to cache leg data (default: 5 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.01 ~ 1.1km).
	// Endpoints within the same grid cell share cached legs.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale legs on provider errors (default: 15 minutes).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often to clean up expired entries (default: 5 minutes).
	CleanupInterval time.Duration
}

// estimateSpeedKmh is the assumed average speed for great-circle duration
// estimates when the road-distance provider is unavailable.
const estimateSpeedKmh = 60.0

// Service plans routes with leg caching and attributes emissions to each leg.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	emissionFactor  float64
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration

	mu          sync.RWMutex
	cache       map[string]*cachedLeg
	lastCleanup time.Time
}

type cachedLeg struct {
	leg       *Leg
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	emissionFactor := cfg.EmissionFactorKgPerKm
	if emissionFactor == 0 {
		emissionFactor = 0.85
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.01 // ~1.1km at equator
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 15 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		emissionFactor:  emissionFactor,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		cleanupInterval: cleanupInterval,
		cache:           make(map[string]*cachedLeg),
	}
}

// OptimizeRoutes plans one leg from the origin address to each destination
// address. Addresses are resolved with the deterministic geocoder, so the
// same inputs always map to the same coordinates. When the road-distance
// provider fails for a leg, the great-circle distance stands in for it and
// the route is marked estimated.
func (s *Service) OptimizeRoutes(ctx context.Context, origin string, destinations []string) (*Plan, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return nil, ErrEmptyOrigin
	}
	if len(destinations) == 0 {
		return nil, ErrNoDestinations
	}

	originCoord := geocode.Geocode(origin)
	plan := &Plan{
		Origin: origin,
		Routes: make([]Route, 0, len(destinations)),
	}

	for _, dest := range destinations {
		dest = strings.TrimSpace(dest)
		if dest == "" {
			plan.Warnings = append(plan.Warnings, "skipped empty destination")
			continue
		}

		destCoord := geocode.Geocode(dest)
		route := Route{
			Origin:           origin,
			Destination:      dest,
			OriginCoord:      originCoord,
			DestinationCoord: destCoord,
		}

		leg, err := s.getLeg(ctx, originCoord, destCoord)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("destination", dest).
				Msg("road distance unavailable, using great-circle estimate")

			distanceKm := geodist.HaversineKm(originCoord.Lat, originCoord.Lon, destCoord.Lat, destCoord.Lon)
			leg = &Leg{
				DistanceKm:  distanceKm,
				DurationMin: distanceKm / estimateSpeedKmh * 60,
			}
			route.Estimated = true
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("distance to %q is estimated", dest))
		}

		route.DistanceKm = leg.DistanceKm
		route.DurationMin = leg.DurationMin
		route.EmissionsKgCO2e = leg.DistanceKm * s.emissionFactor

		plan.Routes = append(plan.Routes, route)
		plan.TotalEmissionsKgCO2e += route.EmissionsKgCO2e
	}

	return plan, nil
}

// getLeg returns the driving leg between two points, using cached data if
// available and not expired.
func (s *Service) getLeg(ctx context.Context, origin, destination geocode.Coordinate) (*Leg, error) {
	cacheKey := s.cacheKey(origin, destination)

	// Check cache (read lock)
	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit for leg")
		return cached.leg, nil
	}
	s.mu.RUnlock()

	return s.fetchLeg(ctx, origin, destination, cacheKey)
}

// fetchLeg fetches a leg from the provider and updates the cache.
func (s *Service) fetchLeg(ctx context.Context, origin, destination geocode.Coordinate, cacheKey string) (*Leg, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd)
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit after double-check")
		return cached.leg, nil
	}

	s.logger.Debug().
		Float64("origin_lat", origin.Lat).
		Float64("origin_lon", origin.Lon).
		Float64("dest_lat", destination.Lat).
		Float64("dest_lon", destination.Lon).
		Str("provider", s.provider.Name()).
		Msg("fetching leg from provider")

	leg, err := s.provider.Route(ctx, origin, destination)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("origin_lat", origin.Lat).
			Float64("origin_lon", origin.Lon).
			Float64("dest_lat", destination.Lat).
			Float64("dest_lon", destination.Lon).
			Msg("failed to fetch leg")

		// Check for stale data (stale-if-error pattern)
		if cached, ok := s.cache[cacheKey]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Str("cache_key", cacheKey).
					Msg("serving stale leg data due to provider error")
				return cached.leg, nil
			}
		}

		return nil, err
	}

	now := time.Now()
	s.cache[cacheKey] = &cachedLeg{
		leg:       leg,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.cleanupIfNeeded()

	return leg, nil
}

// cacheKey generates a cache key for a leg.
// Uses grid-based quantization for both origin and destination.
// Format: {gridOriginLat},{gridOriginLon}:{gridDestLat},{gridDestLon}.
func (s *Service) cacheKey(origin, destination geocode.Coordinate) string {
	gridOriginLat := math.Floor(origin.Lat/s.cacheGridSize) * s.cacheGridSize
	gridOriginLon := math.Floor(origin.Lon/s.cacheGridSize) * s.cacheGridSize
	gridDestLat := math.Floor(destination.Lat/s.cacheGridSize) * s.cacheGridSize
	gridDestLon := math.Floor(destination.Lon/s.cacheGridSize) * s.cacheGridSize

	return fmt.Sprintf("%.2f,%.2f:%.2f,%.2f",
		gridOriginLat, gridOriginLon,
		gridDestLat, gridDestLon,
	)
}

// cleanupIfNeeded removes expired entries if cleanup interval has passed.
func (s *Service) cleanupIfNeeded() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.cache {
		// Remove entries that are past the stale-if-error window
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired leg cache entries")
	}
}

// InvalidateCache clears all cached legs.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedLeg)
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	fresh := 0
	stale := 0

	for _, c := range s.cache {
		if now.Before(c.expiresAt) {
			fresh++
		} else if now.Before(c.fetchedAt.Add(s.staleIfErrorTTL)) {
			stale++
		}
	}

	return CacheStats{
		TotalEntries: len(s.cache),
		FreshEntries: fresh,
		StaleEntries: stale,
		Provider:     s.provider.Name(),
	}
}

// CacheStats contains cache statistics.
type CacheStats struct {
	TotalEntries int
	FreshEntries int
	StaleEntries int
	Provider     string
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
