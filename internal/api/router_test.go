package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonchain/carbonchain/internal/advisor"
	"github.com/carbonchain/carbonchain/internal/api"
	"github.com/carbonchain/carbonchain/internal/api/models"
	"github.com/carbonchain/carbonchain/internal/factory"
	"github.com/carbonchain/carbonchain/internal/geocode"
	"github.com/carbonchain/carbonchain/internal/impact"
	"github.com/carbonchain/carbonchain/internal/routing"
	"github.com/carbonchain/carbonchain/internal/supplier"
)

// stubRouteProvider returns a fixed leg for every origin/destination pair.
type stubRouteProvider struct {
	leg routing.Leg
	err error
}

func (p *stubRouteProvider) Route(_ context.Context, _, _ geocode.Coordinate) (*routing.Leg, error) {
	if p.err != nil {
		return nil, p.err
	}
	leg := p.leg
	return &leg, nil
}

func (p *stubRouteProvider) Name() string { return "stub-router" }

// stubFacilityProvider returns a fixed facility set around any center.
type stubFacilityProvider struct {
	facilities func(center geocode.Coordinate) []supplier.Facility
}

func (p *stubFacilityProvider) IndustrialFacilities(_ context.Context, center geocode.Coordinate, _ float64) ([]supplier.Facility, error) {
	return p.facilities(center), nil
}

func (p *stubFacilityProvider) Name() string { return "stub-facilities" }

func newTestRouter() http.Handler {
	logger := zerolog.New(io.Discard)

	facilityProvider := &stubFacilityProvider{
		facilities: func(center geocode.Coordinate) []supplier.Facility {
			return []supplier.Facility{
				{
					ID:    1,
					Kind:  "node",
					Name:  "Test Works",
					Tags:  map[string]string{"industrial": "textile"},
					Coord: &geocode.Coordinate{Lat: center.Lat, Lon: center.Lon + 0.05},
				},
			}
		},
	}

	return api.NewRouter(api.RouterConfig{
		Version:   "test",
		BuildTime: "2026-01-01T00:00:00Z",
		Logger:    logger,
		RoutingService: routing.NewService(routing.ServiceConfig{
			Provider: &stubRouteProvider{leg: routing.Leg{DistanceKm: 100, DurationMin: 90}},
			Logger:   logger,
		}),
		SupplierService: supplier.NewService(supplier.ServiceConfig{
			Provider: facilityProvider,
			Logger:   logger,
		}),
		Aggregator: impact.NewAggregator(impact.Config{}),
		FactoryAnalyzer: factory.NewAnalyzer(factory.AnalyzerConfig{
			Provider: facilityProvider,
			Logger:   logger,
		}),
		AdvisorService: advisor.NewService(advisor.ServiceConfig{Logger: logger}),
	})
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.NotEmpty(t, health.Time)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	err := json.Unmarshal(w.Body.Bytes(), &status)
	require.NoError(t, err)

	// No collaborator registry wired in tests
	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.Empty(t, status.Providers)
}

func TestRouter_OptimizeRoutes(t *testing.T) {
	router := newTestRouter()

	input := models.OptimizeRoutesRequest{
		Origin:       "Istanbul",
		Destinations: []string{"Ankara", "Izmir"},
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/routes:optimize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var plan routing.Plan
	err := json.Unmarshal(w.Body.Bytes(), &plan)
	require.NoError(t, err)

	assert.Equal(t, "Istanbul", plan.Origin)
	require.Len(t, plan.Routes, 2)
	assert.Equal(t, 100.0, plan.Routes[0].DistanceKm)
	assert.InDelta(t, 170, plan.TotalEmissionsKgCO2e, 0.001)
}

func TestRouter_OptimizeRoutes_ValidationError(t *testing.T) {
	router := newTestRouter()

	input := models.OptimizeRoutesRequest{Origin: "Istanbul"}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/routes:optimize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.NotEmpty(t, problem.TraceID)
}

func TestRouter_SearchSuppliers(t *testing.T) {
	router := newTestRouter()

	input := models.SupplierSearchRequest{
		ProductType:   "textile",
		Location:      "Bursa",
		MaxDistanceKm: 50,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/suppliers:search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.SupplierSearchResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Suppliers, 1)
	assert.Equal(t, "Test Works", resp.Suppliers[0].Name)
	assert.Equal(t, "Bursa", resp.Location)
}

func TestRouter_SearchSuppliers_ValidationError(t *testing.T) {
	router := newTestRouter()

	input := models.SupplierSearchRequest{Location: "Bursa"}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/suppliers:search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
}

func TestRouter_AnalyzeImpact(t *testing.T) {
	router := newTestRouter()

	input := models.ImpactAnalyzeRequest{
		Routes: []impact.RouteResult{
			{Origin: "Istanbul", Destination: "Ankara", DistanceKm: 450, EmissionsKgCO2e: 382.5},
		},
		Suppliers: []impact.SupplierResult{
			{Name: "Test Works", DistanceKm: 10, SustainabilityScore: 90},
		},
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/impact:analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ImpactAnalyzeResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.RouteCount)
	assert.Equal(t, 1, resp.SupplierCount)
	assert.InDelta(t, 382.5, resp.Summary.TotalEmissionsKgCO2e, 0.001)
	assert.Equal(t, 1.0, resp.Summary.LocalSourcingRatio)
}

func TestRouter_AdviseImpact_FallbackWithoutProvider(t *testing.T) {
	router := newTestRouter()

	input := models.ImpactAnalyzeRequest{
		Routes: []impact.RouteResult{
			{Origin: "Istanbul", Destination: "Ankara", DistanceKm: 450, EmissionsKgCO2e: 382.5},
		},
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/impact:advise", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ImpactAdviseResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	// Numeric portion always present; no chat provider means fallback advice
	assert.InDelta(t, 382.5, resp.Summary.TotalEmissionsKgCO2e, 0.001)
	require.NotNil(t, resp.Advice)
	assert.True(t, resp.Advice.Fallback)
	assert.NotEmpty(t, resp.Warnings)
}

func TestRouter_ProvinceSurvey(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/emissions/provinces/Kocaeli", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var survey factory.ProvinceSurvey
	err := json.Unmarshal(w.Body.Bytes(), &survey)
	require.NoError(t, err)

	assert.Equal(t, "Kocaeli", survey.Province)
	assert.Equal(t, 1, survey.FactoryCount)
}

func TestRouter_ProvinceSurvey_UnknownProvince(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/emissions/provinces/Atlantis", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)
	assert.Equal(t, models.ProblemTypeNotFound, problem.Type)
}

func TestRouter_ProvinceSurvey_InvalidRadius(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/emissions/provinces/Ankara?radius_km=-5", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_NationalSurvey(t *testing.T) {
	router := newTestRouter()

	// Survey one province so the national aggregate has data
	seed := httptest.NewRequest(http.MethodGet, "/v1/emissions/provinces/Bursa", http.NoBody)
	router.ServeHTTP(httptest.NewRecorder(), seed)

	req := httptest.NewRequest(http.MethodGet, "/v1/emissions/provinces", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var national factory.NationalSurvey
	err := json.Unmarshal(w.Body.Bytes(), &national)
	require.NoError(t, err)

	assert.Len(t, national.Provinces, 81)
	assert.Equal(t, 1, national.SurveyedProvinceCount)
}

func TestRouter_ListSectors(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/catalog/sectors", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var catalog models.SectorCatalog
	err := json.Unmarshal(w.Body.Bytes(), &catalog)
	require.NoError(t, err)

	assert.Equal(t, catalog.Count, len(catalog.Sectors))
	assert.NotEmpty(t, catalog.Sectors)
}

func TestRouter_ListProvinces(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/catalog/provinces", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var catalog models.ProvinceCatalog
	err := json.Unmarshal(w.Body.Bytes(), &catalog)
	require.NoError(t, err)

	assert.Equal(t, 81, catalog.Count)
	assert.Contains(t, catalog.Provinces, "Istanbul")
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
