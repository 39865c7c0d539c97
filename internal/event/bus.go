package event

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"nightwatch/backend/internal/model"
	"nightwatch/backend/pkg/redis"
)

// Recorder persists audit rows; implemented by the audit repository.
type Recorder interface {
	Record(ctx context.Context, e *model.AuditEvent) error
}

// FanoutBus delivers every event to the structured audit log and the audit
// table, and booking events additionally to the Redis notification channel.
type FanoutBus struct {
	recorder Recorder
	rdb      *redis.Client // nil when Redis is unavailable
	logger   *zap.Logger
}

// NewFanoutBus creates the production event bus. rdb may be nil.
func NewFanoutBus(recorder Recorder, rdb *redis.Client, logger *zap.Logger) *FanoutBus {
	return &FanoutBus{recorder: recorder, rdb: rdb, logger: logger}
}

func (b *FanoutBus) Emit(ctx context.Context, e Event) {
	b.logger.Info("domain event",
		zap.String("event_type", e.Type),
		zap.String("actor_id", e.ActorID),
		zap.String("target", e.Target),
		zap.Any("details", e.Details),
		zap.Time("timestamp", e.Timestamp),
	)

	row := &model.AuditEvent{
		EventType: e.Type,
		CreatedAt: e.Timestamp,
	}
	if e.ActorID != "" {
		actor := e.ActorID
		row.ActorID = &actor
	}
	if e.Target != "" {
		target := e.Target
		row.Target = &target
	}
	if len(e.Details) > 0 {
		if raw, err := json.Marshal(e.Details); err == nil {
			row.Details = raw
		}
	}
	if err := b.recorder.Record(ctx, row); err != nil {
		b.logger.Error("persist audit event failed",
			zap.String("event_type", e.Type), zap.Error(err))
	}

	// Only booking lifecycle events drive reminders.
	switch e.Type {
	case TypeBookingCreated, TypeBookingCancelled:
		if b.rdb == nil {
			return
		}
		payload, err := json.Marshal(e)
		if err != nil {
			b.logger.Error("marshal notification failed", zap.Error(err))
			return
		}
		if err := b.rdb.Publish(ctx, payload); err != nil {
			b.logger.Warn("publish notification failed",
				zap.String("event_type", e.Type), zap.Error(err))
		}
	}
}
