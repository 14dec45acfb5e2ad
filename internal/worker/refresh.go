package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonchain/carbonchain/internal/factory"
)

// SurveyJob keeps the factory analyzer's province cache warm so the API
// serves survey reads without waiting on the facility provider.
type SurveyJob struct {
	config   SurveyConfig
	analyzer *factory.Analyzer
	logger   zerolog.Logger

	metrics *SurveyMetrics
}

// SurveyMetrics tracks survey job statistics.
type SurveyMetrics struct {
	mu sync.RWMutex

	TotalRuns         int64
	SurveyedProvinces int64
	FailedProvinces   int64
	FactoriesSurveyed int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// SurveyJobConfig holds configuration for creating a SurveyJob.
type SurveyJobConfig struct {
	Config   SurveyConfig
	Analyzer *factory.Analyzer
	Logger   zerolog.Logger
}

// NewSurveyJob creates a new survey job processor.
func NewSurveyJob(cfg SurveyJobConfig) *SurveyJob {
	config := cfg.Config
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.RadiusKm <= 0 {
		config.RadiusKm = 30
	}

	return &SurveyJob{
		config:   config,
		analyzer: cfg.Analyzer,
		logger:   cfg.Logger,
		metrics:  &SurveyMetrics{},
	}
}

// SurveyResult contains the result of one survey run.
type SurveyResult struct {
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalProvinces int
	Successful     int
	Failed         int
	Factories      int
	Errors         []SurveyError
}

// SurveyError represents an error surveying one province.
type SurveyError struct {
	Province string
	Error    string
}

// Run surveys all configured provinces with bounded concurrency.
func (j *SurveyJob) Run(ctx context.Context) *SurveyResult {
	startTime := time.Now()
	provinces := j.config.TargetProvinces()
	result := &SurveyResult{
		StartTime:      startTime,
		TotalProvinces: len(provinces),
	}

	j.logger.Info().
		Int("total_provinces", result.TotalProvinces).
		Int("concurrency", j.config.Concurrency).
		Float64("radius_km", j.config.RadiusKm).
		Msg("starting province survey job")

	provinceChan := make(chan string, len(provinces))
	resultsChan := make(chan provinceResult, len(provinces))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.surveyWorker(ctx, provinceChan, resultsChan)
		}()
	}

	for _, p := range provinces {
		provinceChan <- p
	}
	close(provinceChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for pr := range resultsChan {
		if pr.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, SurveyError{
				Province: pr.province,
				Error:    pr.err.Error(),
			})
		} else {
			result.Successful++
			result.Factories += pr.factories
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("factories", result.Factories).
		Msg("province survey job completed")

	return result
}

type provinceResult struct {
	province  string
	factories int
	err       error
}

func (j *SurveyJob) surveyWorker(ctx context.Context, provinces <-chan string, results chan<- provinceResult) {
	for province := range provinces {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.surveyProvince(ctx, province)
		}
	}
}

func (j *SurveyJob) surveyProvince(ctx context.Context, province string) provinceResult {
	provinceCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	survey, err := j.analyzer.SurveyProvince(provinceCtx, province, j.config.RadiusKm)
	if err != nil {
		return provinceResult{province: province, err: err}
	}
	return provinceResult{province: province, factories: survey.FactoryCount}
}

func (j *SurveyJob) updateMetrics(result *SurveyResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.SurveyedProvinces += int64(result.Successful)
	j.metrics.FailedProvinces += int64(result.Failed)
	j.metrics.FactoriesSurveyed += int64(result.Factories)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *SurveyJob) GetMetrics() SurveyMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return SurveyMetrics{
		TotalRuns:         j.metrics.TotalRuns,
		SurveyedProvinces: j.metrics.SurveyedProvinces,
		FailedProvinces:   j.metrics.FailedProvinces,
		FactoriesSurveyed: j.metrics.FactoriesSurveyed,
		LastRunAt:         j.metrics.LastRunAt,
		LastRunDuration:   j.metrics.LastRunDuration,
		TotalDuration:     j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *SurveyJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":         m.TotalRuns,
		"surveyed_provinces": m.SurveyedProvinces,
		"failed_provinces":   m.FailedProvinces,
		"factories_surveyed": m.FactoriesSurveyed,
		"last_run_at":        m.LastRunAt,
		"last_run_duration":  m.LastRunDuration.String(),
		"total_duration":     m.TotalDuration.String(),
	}
}
