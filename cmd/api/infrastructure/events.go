package infrastructure

import (
	"go.uber.org/zap"

	"recharge-service/internal/adapter/events"
	"recharge-service/internal/config"
	"recharge-service/internal/domain/event"
)

// NewEventPublisher returns a Kafka publisher when Kafka is enabled and a
// logging publisher otherwise.
func NewEventPublisher(cfg *config.Config, l *zap.Logger) event.Publisher {
	if !cfg.Kafka.Enabled {
		l.Info("kafka disabled, domain events are logged only")
		return events.NewLogPublisher(l)
	}

	l.Info("publishing domain events to kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
	)
	return events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic, l), l)
}
