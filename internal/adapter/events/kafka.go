// Package events publishes domain events to Kafka, or to the log when Kafka
// is not configured.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"recharge-service/internal/domain/event"
	"recharge-service/pkg/logger"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements event.Publisher on a Kafka topic. Messages are
// keyed by the event key, so events of one transaction land on one partition.
type KafkaPublisher struct {
	writer MessageWriter
	log    *zap.Logger
}

// NewKafkaWriter builds an asynchronous writer for topic. Delivery failures
// are logged from the completion callback.
func NewKafkaWriter(brokers []string, topic string, log *zap.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("failed to deliver events", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
}

// NewKafkaPublisher creates a publisher over w.
func NewKafkaPublisher(w MessageWriter, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: log}
}

// Publish encodes e as JSON and hands it to the writer.
func (p *KafkaPublisher) Publish(ctx context.Context, e event.Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", e.Name, err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%s-%s", e.Name, e.Key)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(e.Name)},
		},
		Time: e.OccurredAt,
	}
	if id := logger.RequestIDFrom(ctx); id != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "request_id", Value: []byte(id)})
	}
	if _, sessionID, ok := logger.Principal(ctx); ok {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "session_id", Value: []byte(sessionID)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("failed to publish event", zap.String("event", e.Name), zap.String("key", e.Key), zap.Error(err))
		return fmt.Errorf("failed to publish event %s: %w", e.Name, err)
	}

	p.log.Debug("event published", zap.String("event", e.Name), zap.String("key", e.Key))
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher implements event.Publisher by logging each event. It is used
// when Kafka is disabled.
type LogPublisher struct {
	log *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish logs e at info level.
func (p *LogPublisher) Publish(ctx context.Context, e event.Event) error {
	logger.WithContext(ctx, p.log).Info("event",
		zap.String("event", e.Name),
		zap.String("key", e.Key),
		zap.Int64("user_id", e.UserID),
		zap.Any("payload", e.Payload),
	)
	return nil
}

// Close implements event.Publisher.
func (p *LogPublisher) Close() error { return nil }
