// Package main provides the entrypoint for the CarbonChain survey worker.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonchain/carbonchain/internal/config"
	"github.com/carbonchain/carbonchain/internal/factory"
	"github.com/carbonchain/carbonchain/internal/supplier/overpass"
	"github.com/carbonchain/carbonchain/internal/upstream"
	"github.com/carbonchain/carbonchain/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "carbonchain-worker"

	radiusKm := flag.Float64("radius", 30, "facility search radius per province in km")
	maxProvinces := flag.Int("max-provinces", 0, "cap on provinces per run (0 = all)")
	provinceList := flag.String("provinces", "", "comma-separated provinces to survey (default: all)")
	once := flag.Bool("once", false, "run a single survey and exit")
	flag.Parse()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting CarbonChain worker")

	cfg := config.FromEnv()

	registry := upstream.NewRegistry()
	overpassClient := overpass.NewClient(overpass.ClientConfig{
		BaseURL:  cfg.OverpassBaseURL,
		Registry: registry,
		Logger:   log,
	})
	analyzer := factory.NewAnalyzer(factory.AnalyzerConfig{
		Provider: overpassClient,
		Logger:   log,
		CacheTTL: cfg.SurveyCacheTTL,
	})

	surveyConfig := worker.DefaultSurveyConfig()
	surveyConfig.RadiusKm = *radiusKm
	surveyConfig.MaxProvinces = *maxProvinces
	if *provinceList != "" {
		var provinces []string
		for _, p := range strings.Split(*provinceList, ",") {
			if p = strings.TrimSpace(p); p != "" {
				provinces = append(provinces, p)
			}
		}
		surveyConfig.Provinces = provinces
	}

	surveyJob := worker.NewSurveyJob(worker.SurveyJobConfig{
		Config:   surveyConfig,
		Analyzer: analyzer,
		Logger:   log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		result := surveyJob.Run(ctx)
		if result.Failed > result.Successful {
			log.Error().
				Int("failed", result.Failed).
				Int("successful", result.Successful).
				Msg("survey run failed")
			os.Exit(1)
		}
		return
	}

	// Health endpoint for the container platform
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"version": Version,
			"metrics": surveyJob.MetricsSnapshot(),
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Prefer Pub/Sub triggered runs; fall back to a local ticker when no
	// subscription is configured.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			SurveyJob:        surveyJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() {
			if closeErr := handler.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub client")
			}
		}()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Fatal().Err(err).Msg("pubsub handler error")
			}
		}()
	} else {
		log.Warn().Msg("pubsub not configured - running on a local refresh timer")
		go func() {
			surveyJob.Run(ctx)

			ticker := time.NewTicker(cfg.SurveyCacheTTL)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					surveyJob.Run(ctx)
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
