package supplier

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonchain/carbonchain/internal/geocode"
	"github.com/carbonchain/carbonchain/pkg/geodist"
)

// ServiceConfig holds configuration for the supplier service.
type ServiceConfig struct {
	// Provider is the industrial facility provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// DistanceWeight is the proximity component weight in the combined
	// score (default: 0.6).
	DistanceWeight float64

	// BaselineWeight is the sustainability component weight in the
	// combined score (default: 0.4).
	BaselineWeight float64

	// EnvironmentalBaseline is the sustainability score assigned to
	// facilities with no environmental data (default: 75).
	EnvironmentalBaseline float64

	// DefaultRadiusKm is the search radius when the caller passes none
	// (default: 50).
	DefaultRadiusKm float64

	// MaxResults caps the number of ranked suppliers returned (default: 20).
	MaxResults int

	// CacheTTL is how long to cache search results (default: 10 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale results on provider errors
	// (default: 30 minutes).
	StaleIfErrorTTL time.Duration
}

// Service ranks industrial facilities around a geocoded location.
type Service struct {
	provider              Provider
	logger                zerolog.Logger
	distanceWeight        float64
	baselineWeight        float64
	environmentalBaseline float64
	defaultRadiusKm       float64
	maxResults            int
	cacheTTL              time.Duration
	staleIfErrorTTL       time.Duration

	mu    sync.RWMutex
	cache map[string]*cachedSearch
}

type cachedSearch struct {
	result    *SearchResult
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new supplier service.
func NewService(cfg ServiceConfig) *Service {
	distanceWeight := cfg.DistanceWeight
	if distanceWeight == 0 {
		distanceWeight = 0.6
	}

	baselineWeight := cfg.BaselineWeight
	if baselineWeight == 0 {
		baselineWeight = 0.4
	}

	environmentalBaseline := cfg.EnvironmentalBaseline
	if environmentalBaseline == 0 {
		environmentalBaseline = 75
	}

	defaultRadiusKm := cfg.DefaultRadiusKm
	if defaultRadiusKm == 0 {
		defaultRadiusKm = 50
	}

	maxResults := cfg.MaxResults
	if maxResults == 0 {
		maxResults = 20
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	return &Service{
		provider:              cfg.Provider,
		logger:                cfg.Logger,
		distanceWeight:        distanceWeight,
		baselineWeight:        baselineWeight,
		environmentalBaseline: environmentalBaseline,
		defaultRadiusKm:       defaultRadiusKm,
		maxResults:            maxResults,
		cacheTTL:              cacheTTL,
		staleIfErrorTTL:       staleIfErrorTTL,
		cache:                 make(map[string]*cachedSearch),
	}
}

// Search geocodes the location, fetches industrial facilities around it and
// returns those matching productType ranked by a proximity and sustainability
// score. An empty productType matches every facility. Facilities without
// geometry are placed at a synthetic point near the center and flagged
// approximate.
func (s *Service) Search(ctx context.Context, productType, location string, radiusKm float64) (*SearchResult, error) {
	productType = strings.TrimSpace(productType)
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptyLocation
	}
	if radiusKm <= 0 {
		radiusKm = s.defaultRadiusKm
	}

	cacheKey := fmt.Sprintf("%s:%s:%.1f", strings.ToLower(productType), strings.ToLower(location), radiusKm)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit for supplier search")
		return cached.result, nil
	}
	s.mu.RUnlock()

	return s.fetchAndRank(ctx, productType, location, radiusKm, cacheKey)
}

func (s *Service) fetchAndRank(ctx context.Context, productType, location string, radiusKm float64, cacheKey string) (*SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd)
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		return cached.result, nil
	}

	center := geocode.Geocode(location)

	s.logger.Debug().
		Str("location", location).
		Float64("lat", center.Lat).
		Float64("lon", center.Lon).
		Float64("radius_km", radiusKm).
		Str("provider", s.provider.Name()).
		Msg("fetching industrial facilities")

	facilities, err := s.provider.IndustrialFacilities(ctx, center, radiusKm)
	if err != nil {
		s.logger.Error().Err(err).
			Str("location", location).
			Msg("failed to fetch facilities")

		// Check for stale data (stale-if-error pattern)
		if cached, ok := s.cache[cacheKey]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Str("cache_key", cacheKey).
					Msg("serving stale supplier data due to provider error")
				return cached.result, nil
			}
		}

		return nil, err
	}

	result := &SearchResult{
		ProductType: productType,
		Location:    location,
		Center:      center,
		RadiusKm:    radiusKm,
		Suppliers:   s.rank(filterByProduct(facilities, productType), center, radiusKm),
	}

	now := time.Now()
	s.cache[cacheKey] = &cachedSearch{
		result:    result,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.logger.Info().
		Str("location", location).
		Int("facility_count", len(facilities)).
		Msg("ranked suppliers")

	return result, nil
}

// filterByProduct keeps facilities whose tags mention the product type. The
// match is a case-insensitive substring over both tag keys and values.
func filterByProduct(facilities []Facility, productType string) []Facility {
	if productType == "" {
		return facilities
	}
	needle := strings.ToLower(productType)

	matched := make([]Facility, 0, len(facilities))
	for _, f := range facilities {
		for k, v := range f.Tags {
			if strings.Contains(strings.ToLower(k), needle) || strings.Contains(strings.ToLower(v), needle) {
				matched = append(matched, f)
				break
			}
		}
	}
	return matched
}

// rank converts facilities to scored suppliers, sorted best first.
func (s *Service) rank(facilities []Facility, center geocode.Coordinate, radiusKm float64) []Supplier {
	suppliers := make([]Supplier, 0, len(facilities))

	for _, f := range facilities {
		sup := Supplier{
			ID:   fmt.Sprintf("%s/%d", f.Kind, f.ID),
			Name: f.Name,
		}
		if sup.Name == "" {
			sup.Name = "Unnamed facility"
		}

		if f.Coord != nil {
			sup.Coordinates = *f.Coord
		} else {
			sup.Coordinates = geocode.NearbyPoint(center, radiusKm)
			sup.Approximate = true
		}

		sup.DistanceKm = geodist.HaversineKm(center.Lat, center.Lon, sup.Coordinates.Lat, sup.Coordinates.Lon)

		distanceScore := (1 - sup.DistanceKm/radiusKm) * 100
		if distanceScore < 0 {
			distanceScore = 0
		}
		if distanceScore > 100 {
			distanceScore = 100
		}

		sup.SustainabilityScore = distanceScore*s.distanceWeight + s.environmentalBaseline*s.baselineWeight

		suppliers = append(suppliers, sup)
	}

	sort.SliceStable(suppliers, func(i, j int) bool {
		return suppliers[i].SustainabilityScore > suppliers[j].SustainabilityScore
	})

	if len(suppliers) > s.maxResults {
		suppliers = suppliers[:s.maxResults]
	}

	return suppliers
}

// InvalidateCache clears all cached search results.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedSearch)
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
