package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	surveyJob        *SurveyJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	SurveyJob        *SurveyJob
	Logger           zerolog.Logger
}

// SurveyMessage represents a survey job message.
type SurveyMessage struct {
	JobType      string   `json:"job_type"`
	Provinces    []string `json:"provinces,omitempty"`
	MaxProvinces int      `json:"max_provinces,omitempty"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		surveyJob:        cfg.SurveyJob,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var surveyMsg SurveyMessage
	if err := json.Unmarshal(msg.Data, &surveyMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch surveyMsg.JobType {
	case "survey_refresh":
		err = h.handleSurveyRefresh(ctx, surveyMsg)
	case "health_check":
		err = h.handleHealthCheck(ctx)
	default:
		logger.Warn().Str("job_type", surveyMsg.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	duration := time.Since(startTime)
	logger.Info().
		Str("job_type", surveyMsg.JobType).
		Dur("duration", duration).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleSurveyRefresh(ctx context.Context, msg SurveyMessage) error {
	h.logger.Info().
		Int("requested_provinces", len(msg.Provinces)).
		Msg("starting survey refresh")

	job := h.surveyJob
	if len(msg.Provinces) > 0 || msg.MaxProvinces > 0 {
		// Message narrows the run to a subset of provinces.
		config := h.surveyJob.config
		if len(msg.Provinces) > 0 {
			config.Provinces = msg.Provinces
		}
		if msg.MaxProvinces > 0 {
			config.MaxProvinces = msg.MaxProvinces
		}
		job = NewSurveyJob(SurveyJobConfig{
			Config:   config,
			Analyzer: h.surveyJob.analyzer,
			Logger:   h.logger,
		})
	}

	result := job.Run(ctx)

	h.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("total_provinces", result.TotalProvinces).
		Msg("survey refresh completed")

	// Consider it successful if more than half succeeded.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many survey failures: %d/%d", result.Failed, result.TotalProvinces)
	}

	return nil
}

func (h *PubSubHandler) handleHealthCheck(ctx context.Context) error {
	h.logger.Debug().Msg("running health check")

	// Survey a single province to verify provider connectivity.
	config := h.surveyJob.config
	config.Provinces = []string{"Istanbul"}
	config.MaxProvinces = 1
	config.Timeout = 10 * time.Second

	healthCheckJob := NewSurveyJob(SurveyJobConfig{
		Config:   config,
		Analyzer: h.surveyJob.analyzer,
		Logger:   h.logger,
	})

	result := healthCheckJob.Run(ctx)

	if result.Failed > 0 {
		return fmt.Errorf("health check failed: %d errors", result.Failed)
	}

	h.logger.Debug().Msg("health check passed")
	return nil
}
