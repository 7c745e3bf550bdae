package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize    int           `mapstructure:"batch_size"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// RetryAttempts is the number of failed publishes after which an
	// event is marked failed. Each poll makes at most one attempt per event.
	RetryAttempts int    `mapstructure:"retry_attempts"`
	Channel       string `mapstructure:"channel"`
}

func (c OutboxProcessorConfig) validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be greater than 0")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be greater than 0")
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("retry attempts must be greater than 0")
	}
	if c.Channel == "" {
		return fmt.Errorf("channel is required")
	}
	return nil
}

// OutboxProcessor relays outbox events to the broker. Claimed rows stay
// locked for the batch, so several processors can run side by side.
type OutboxProcessor struct {
	store   repository.Store
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	store repository.Store,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid outbox processor config: %w", err)
	}

	return &OutboxProcessor{
		store:   store,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting outbox processor",
		"batch_size", p.config.BatchSize,
		"channel", p.config.Channel)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		}
	}
}

// ProcessBatch claims up to BatchSize pending events and publishes them.
// It returns how many were published.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	published := 0
	err := p.store.WithTx(ctx, func(tx repository.Store) error {
		events, err := tx.Outbox().ClaimPending(ctx, p.config.BatchSize)
		if err != nil {
			return err
		}

		for _, event := range events {
			ok, err := p.processEvent(ctx, tx, event)
			if err != nil {
				return err
			}
			if ok {
				published++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to process outbox batch: %w", err)
	}

	if pending, err := p.store.Outbox().CountPending(ctx); err == nil {
		p.metrics.OutboxQueueSize.Set(float64(pending))
	}
	return published, nil
}

// processEvent publishes one event and records the outcome. A publish
// failure is not returned; only failing to record the outcome is.
func (p *OutboxProcessor) processEvent(ctx context.Context, tx repository.Store, event *model.OutboxEvent) (bool, error) {
	msg := messaging.Message{
		ID:         event.ID.String(),
		Type:       event.EventType,
		Payload:    event.Payload,
		OccurredAt: event.CreatedAt,
	}

	pubErr := p.broker.Publish(ctx, p.config.Channel, msg)
	if pubErr == nil {
		p.metrics.OutboxEventsProcessed.Inc()
		return true, tx.Outbox().UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil)
	}

	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	errStr := pubErr.Error()
	status := model.OutboxStatusPending
	if event.RetryCount+1 >= p.config.RetryAttempts {
		status = model.OutboxStatusFailed
		p.metrics.OutboxEventsFailed.Inc()
	}

	p.logger.Error(pubErr, "Failed to publish event",
		"event_id", event.ID.String(),
		"event_type", event.EventType,
		"attempt", event.RetryCount+1,
		"status", string(status))

	return false, tx.Outbox().UpdateStatus(ctx, event.ID, status, &errStr)
}
