package eventsink

import (
	"context"
	"encoding/json"
	"errors"

	"asset-custody/internal/domain/event"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	_ event.Sink = (*RedisPublisher)(nil)
	_ event.Sink = (*LogSink)(nil)
	_ event.Sink = Multi(nil)
)

// RedisPublisher publishes every event as JSON on one pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e event.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, payload).Err()
}

// LogSink writes each event as a structured log entry.
type LogSink struct{ log *zap.Logger }

func NewLogSink(log *zap.Logger) *LogSink { return &LogSink{log: log} }

func (s *LogSink) Publish(_ context.Context, e event.Event) error {
	s.log.Info("custody event",
		zap.String("event_id", e.EventID),
		zap.String("assignment_id", e.AssignmentID),
		zap.String("op", e.Operation),
		zap.String("from", e.FromStatus),
		zap.String("to", e.ToStatus),
		zap.Uint64("version", e.Version),
		zap.String("actor", e.Actor),
		zap.Time("timestamp", e.OccurredAt),
	)
	return nil
}

// Multi fans out to every sink; all sinks run even if one fails.
type Multi []event.Sink

func (m Multi) Publish(ctx context.Context, e event.Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
