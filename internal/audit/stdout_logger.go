package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StdoutLogger writes audit lines to the process log. Used for process
// lifecycle events that have no database transaction.
type StdoutLogger struct {
	logger *zap.Logger
}

func NewStdoutLogger(logger ...*zap.Logger) *StdoutLogger {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &StdoutLogger{logger: l}
}

func (l *StdoutLogger) Log(ctx context.Context, entry Entry) error {
	enrich(ctx, &entry)
	fields := []zap.Field{
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("entity_type", entry.EntityType),
		zap.Uint("entity_id", entry.EntityID),
		zap.String("description", entry.Description),
	}
	if entry.RequestID != "" {
		fields = append(fields, zap.String("request_id", entry.RequestID))
	}
	if entry.ActorID != nil {
		fields = append(fields, zap.Uint("actor_id", *entry.ActorID))
	}
	l.logger.Info("audit event", fields...)
	return nil
}
