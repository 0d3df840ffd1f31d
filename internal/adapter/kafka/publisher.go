// Package kafka publishes admitted alerts to a Kafka topic for downstream
// consumers. The flat-file store stays the source of truth; publishing is
// fire-and-forget fan-out and a publish failure never blocks persistence.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/valleywatch/news-threat-etl/internal/config"
	"github.com/valleywatch/news-threat-etl/internal/domain"
)

// Publisher produces alert messages to the sink topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and produces one alert.
func (p *Publisher) Publish(ctx context.Context, alert domain.Alert) error {
	msg, err := serializeToMessage(alert)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage renders an alert as a Kafka message keyed by city so
// alerts for one place land on one partition.
func serializeToMessage(alert domain.Alert) (kafkago.Message, error) {
	value, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(alert.City),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "severity", Value: []byte(alert.Severity)},
		},
	}, nil
}
