package producer

import (
	"context"
	"time"

	"go-hrms/internal/messaging/kafka"

	"go.uber.org/zap"
)

const (
	DefaultBatchSize    = 50
	DefaultPollInterval = 3 * time.Second
)

// Relay moves committed outbox rows onto the broker. Rows are only marked
// sent after the write succeeds, so delivery is at-least-once.
type Relay struct {
	repo         kafka.OutboxRepository
	writer       MessageWriter
	logger       *zap.Logger
	batchSize    int
	pollInterval time.Duration
}

func NewRelay(repo kafka.OutboxRepository, writer MessageWriter, logger *zap.Logger, pollInterval time.Duration) *Relay {
	if logger == nil {
		logger = zap.L()
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Relay{
		repo:         repo,
		writer:       writer,
		logger:       logger.Named("kafka.producer.relay"),
		batchSize:    DefaultBatchSize,
		pollInterval: pollInterval,
	}
}

// Run polls until ctx is cancelled. A full batch is followed immediately
// by another flush instead of waiting for the next tick.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.logger.Info("outbox relay started", zap.Duration("poll_interval", r.pollInterval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	for ctx.Err() == nil {
		fetched, _, err := r.Flush(ctx)
		if err != nil {
			r.logger.Error("flush outbox failed", zap.Error(err))
			return
		}
		if fetched < r.batchSize {
			return
		}
	}
}

// Flush publishes one batch. It reports how many rows were fetched and how
// many were marked sent; a failed publish is recorded on its row and the
// batch carries on.
func (r *Relay) Flush(ctx context.Context) (fetched, sent int, err error) {
	pending, err := r.repo.ListPending(ctx, r.batchSize)
	if err != nil {
		return 0, 0, err
	}

	for _, event := range pending {
		log := r.logger.With(
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("request_id", event.RequestID),
		)

		if err := publishEvent(ctx, r.writer, event); err != nil {
			log.Warn("publish outbox event failed", zap.Int("retry_count", event.RetryCount), zap.Error(err))
			if markErr := r.repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				log.Error("record outbox failure", zap.Error(markErr))
			}
			continue
		}

		if err := r.repo.MarkSent(ctx, event.ID); err != nil {
			// The message is out; the row will be re-sent and consumers dedupe.
			log.Error("mark outbox sent failed", zap.Error(err))
			continue
		}
		sent++
	}

	if len(pending) > 0 {
		r.logger.Info("outbox batch flushed", zap.Int("fetched", len(pending)), zap.Int("sent", sent))
	}
	return len(pending), sent, nil
}
