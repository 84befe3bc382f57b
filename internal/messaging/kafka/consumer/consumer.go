package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-hrms/internal/events"
	notificationerrors "go-hrms/internal/notification/errors"
	"go-hrms/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Store failures are retried in place. Fetching the next message first
// would let its commit move the group offset past the failed one.
var (
	retryInitial = 500 * time.Millisecond
	retryMax     = 30 * time.Second
)

// MessageReader is the subset of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// LeaveEventHandler is satisfied by notification.Service.
type LeaveEventHandler interface {
	HandleLeaveEvent(ctx context.Context, e events.LeaveLifecycleEvent) (int, error)
}

// ConsumeLeaveLifecycle runs until ctx is cancelled. Undecodable and
// unknown events are committed and dropped. A failed store is retried with
// backoff before the next fetch; on shutdown the offset stays uncommitted
// and the message is delivered again to the next group member.
func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader MessageReader,
	handler LeaveEventHandler,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_lifecycle")
	log.Info("leave lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave lifecycle consumer stopped")
				return
			}
			log.Error("fetch leave lifecycle message failed", zap.Error(err))
			continue
		}

		HandleMessage(ctx, reader, handler, msg, log)
	}
}

// HandleMessage processes a single fetched message. It only returns
// without committing when ctx ends during a store retry.
func HandleMessage(
	ctx context.Context,
	reader MessageReader,
	handler LeaveEventHandler,
	msg kafkago.Message,
	log *zap.Logger,
) {
	var event events.LeaveLifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode leave lifecycle event failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		commit(ctx, reader, msg, log)
		return
	}

	if event.RequestID != "" {
		ctx = contextutil.WithRequestID(ctx, event.RequestID)
	}

	var created int
	wait := retryInitial
	for attempt := 1; ; attempt++ {
		var err error
		created, err = handler.HandleLeaveEvent(ctx, event)
		if err == nil {
			break
		}
		if errors.Is(err, notificationerrors.ErrUnknownEventType) {
			log.Warn("unknown leave event type, skipping", zap.String("event_type", event.EventType))
			commit(ctx, reader, msg, log)
			return
		}
		log.Error("store leave notifications failed",
			zap.String("event_type", event.EventType),
			zap.Uint("application_id", event.ApplicationID),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
		if !sleep(ctx, wait) {
			return
		}
		wait *= 2
		if wait > retryMax {
			wait = retryMax
		}
	}

	commit(ctx, reader, msg, log)
	log.Info("leave notifications created from event",
		zap.String("event_type", event.EventType),
		zap.Uint("application_id", event.ApplicationID),
		zap.Int("created", created),
	)
}

// sleep waits for d and reports false when ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func commit(ctx context.Context, reader MessageReader, msg kafkago.Message, log *zap.Logger) {
	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit leave lifecycle message failed", zap.Error(err))
	}
}
