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
	sweepJob         *SweepJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	SweepJob         *SweepJob
	Logger           zerolog.Logger
}

// SweepMessage represents a health sweep job message.
type SweepMessage struct {
	JobType string `json:"job_type"`

	// Landscape restricts a health_check job to one landscape.
	Landscape string `json:"landscape,omitempty"`
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
		sweepJob:         cfg.SweepJob,
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

	// Parse message.
	var sweepMsg SweepMessage
	if err := json.Unmarshal(msg.Data, &sweepMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	// Handle based on job type.
	var err error
	switch sweepMsg.JobType {
	case "health_sweep":
		err = h.handleHealthSweep(ctx)
	case "health_check":
		err = h.handleHealthCheck(ctx, sweepMsg)
	default:
		logger.Warn().Str("job_type", sweepMsg.JobType).Msg("unknown job type")
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
		Str("job_type", sweepMsg.JobType).
		Dur("duration", duration).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleHealthSweep(ctx context.Context) error {
	h.logger.Info().Msg("starting health sweep")

	result, err := h.sweepJob.Run(ctx)
	if err != nil {
		return fmt.Errorf("running sweep: %w", err)
	}

	// Log summary.
	h.logger.Info().
		Dur("duration", result.Duration).
		Int("landscapes", result.Landscapes).
		Int("up", result.Up).
		Int("down", result.Down).
		Msg("health sweep completed")

	// Consider it successful if more than half of the components answered.
	if result.Down > result.Up {
		return fmt.Errorf("too many probe failures: %d/%d", result.Down, result.Probed)
	}

	return nil
}

func (h *PubSubHandler) handleHealthCheck(ctx context.Context, msg SweepMessage) error {
	if msg.Landscape == "" {
		return fmt.Errorf("health_check message missing landscape")
	}

	h.logger.Debug().Str("landscape", msg.Landscape).Msg("running health check")

	// Sweep just the requested landscape with a short budget.
	checkJob := NewSweepJob(SweepJobConfig{
		Config: SweepConfig{
			Landscapes:  []string{msg.Landscape},
			Concurrency: 1,
			Timeout:     10 * time.Second,
		},
		Logger:         h.logger,
		CatalogService: h.sweepJob.catalog,
		HealthService:  h.sweepJob.health,
	})

	result, err := checkJob.Run(ctx)
	if err != nil {
		return fmt.Errorf("running check: %w", err)
	}
	if result.Landscapes == 0 {
		return fmt.Errorf("unknown landscape %q", msg.Landscape)
	}

	if result.Down > 0 {
		return fmt.Errorf("health check failed: %d components down", result.Down)
	}

	h.logger.Debug().Msg("health check passed")
	return nil
}
