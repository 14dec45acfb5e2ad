package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonchain/carbonchain/internal/factory"
	"github.com/carbonchain/carbonchain/internal/geocode"
	"github.com/carbonchain/carbonchain/internal/supplier"
	"github.com/carbonchain/carbonchain/internal/worker"
)

// stubFacilityProvider returns the same facilities for every province.
type stubFacilityProvider struct {
	facilities []supplier.Facility
	err        error
}

func (p *stubFacilityProvider) IndustrialFacilities(_ context.Context, center geocode.Coordinate, _ float64) ([]supplier.Facility, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([]supplier.Facility, len(p.facilities))
	for i, f := range p.facilities {
		f.Coord = &geocode.Coordinate{Lat: center.Lat, Lon: center.Lon + 0.01}
		out[i] = f
	}
	return out, nil
}

func (p *stubFacilityProvider) Name() string { return "stub" }

func testAnalyzer(provider supplier.Provider) *factory.Analyzer {
	return factory.NewAnalyzer(factory.AnalyzerConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})
}

func TestDefaultSurveyConfig(t *testing.T) {
	cfg := worker.DefaultSurveyConfig()

	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 30.0, cfg.RadiusKm)
	assert.Len(t, cfg.Provinces, 81)
}

func TestSurveyConfig_TargetProvinces(t *testing.T) {
	cfg := worker.SurveyConfig{
		Provinces:    []string{"Istanbul", "Ankara", "Izmir"},
		MaxProvinces: 2,
	}

	provinces := cfg.TargetProvinces()
	require.Len(t, provinces, 2)
	assert.Equal(t, []string{"Istanbul", "Ankara"}, provinces)
}

func TestSurveyConfig_TargetProvinces_Defaults(t *testing.T) {
	cfg := worker.SurveyConfig{}
	assert.Len(t, cfg.TargetProvinces(), 81)
}

func TestSurveyJob_Run(t *testing.T) {
	provider := &stubFacilityProvider{
		facilities: []supplier.Facility{
			{ID: 1, Kind: "node", Name: "Works A"},
			{ID: 2, Kind: "way", Name: "Works B"},
		},
	}

	job := worker.NewSurveyJob(worker.SurveyJobConfig{
		Config: worker.SurveyConfig{
			Provinces:   []string{"Istanbul", "Ankara", "Bursa"},
			Concurrency: 2,
			Timeout:     time.Second,
		},
		Analyzer: testAnalyzer(provider),
		Logger:   zerolog.Nop(),
	})

	result := job.Run(context.Background())

	assert.Equal(t, 3, result.TotalProvinces)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 6, result.Factories)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestSurveyJob_Run_CollectsErrors(t *testing.T) {
	provider := &stubFacilityProvider{err: errors.New("overpass timeout")}

	job := worker.NewSurveyJob(worker.SurveyJobConfig{
		Config: worker.SurveyConfig{
			Provinces:   []string{"Istanbul", "Atlantis"},
			Concurrency: 1,
			Timeout:     time.Second,
		},
		Analyzer: testAnalyzer(provider),
		Logger:   zerolog.Nop(),
	})

	result := job.Run(context.Background())

	assert.Equal(t, 2, result.TotalProvinces)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	provinces := []string{result.Errors[0].Province, result.Errors[1].Province}
	assert.Contains(t, provinces, "Istanbul")
	assert.Contains(t, provinces, "Atlantis")
}

func TestSurveyJob_Run_ContextCancellation(t *testing.T) {
	provider := &stubFacilityProvider{
		facilities: []supplier.Facility{{ID: 1, Kind: "node", Name: "Works"}},
	}

	job := worker.NewSurveyJob(worker.SurveyJobConfig{
		Config: worker.SurveyConfig{
			Concurrency: 1,
			Timeout:     100 * time.Millisecond,
		},
		Analyzer: testAnalyzer(provider),
		Logger:   zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := job.Run(ctx)

	// Should complete (even if not all provinces processed)
	assert.NotNil(t, result)
}

func TestSurveyJob_GetMetrics(t *testing.T) {
	provider := &stubFacilityProvider{
		facilities: []supplier.Facility{{ID: 1, Kind: "node", Name: "Works"}},
	}

	job := worker.NewSurveyJob(worker.SurveyJobConfig{
		Config: worker.SurveyConfig{
			Provinces:   []string{"Kocaeli"},
			Concurrency: 1,
			Timeout:     time.Second,
		},
		Analyzer: testAnalyzer(provider),
		Logger:   zerolog.Nop(),
	})

	_ = job.Run(context.Background())

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalRuns)
	assert.Equal(t, int64(1), metrics.SurveyedProvinces)
	assert.Equal(t, int64(1), metrics.FactoriesSurveyed)
	assert.NotZero(t, metrics.LastRunAt)
	assert.Greater(t, metrics.LastRunDuration, time.Duration(0))
}

func TestSurveyJob_MetricsSnapshot(t *testing.T) {
	provider := &stubFacilityProvider{
		facilities: []supplier.Facility{{ID: 1, Kind: "node", Name: "Works"}},
	}

	job := worker.NewSurveyJob(worker.SurveyJobConfig{
		Config: worker.SurveyConfig{
			Provinces:   []string{"Kocaeli"},
			Concurrency: 1,
			Timeout:     time.Second,
		},
		Analyzer: testAnalyzer(provider),
		Logger:   zerolog.Nop(),
	})

	_ = job.Run(context.Background())

	snapshot := job.MetricsSnapshot()

	assert.Contains(t, snapshot, "total_runs")
	assert.Contains(t, snapshot, "surveyed_provinces")
	assert.Contains(t, snapshot, "failed_provinces")
	assert.Contains(t, snapshot, "factories_surveyed")
	assert.Contains(t, snapshot, "last_run_at")
	assert.Contains(t, snapshot, "last_run_duration")
}

func TestNewSurveyJob_DefaultConfig(t *testing.T) {
	job := worker.NewSurveyJob(worker.SurveyJobConfig{
		Config:   worker.SurveyConfig{},
		Analyzer: testAnalyzer(&stubFacilityProvider{}),
		Logger:   zerolog.Nop(),
	})

	metrics := job.GetMetrics()
	assert.Equal(t, int64(0), metrics.TotalRuns) // Not run yet
}
