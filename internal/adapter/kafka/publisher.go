// Package kafka publishes incident snapshots for downstream consumers.
// Optional: the service runs fine with publishing disabled, which is the
// default.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
)

// Publisher produces one message per incident to the snapshot topic after
// each aggregation cycle. It implements poll.IncidentPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a producer for the given brokers and topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes the incident list and writes it in a single
// WriteMessages call. An empty snapshot publishes nothing.
func (p *Publisher) Publish(ctx context.Context, incidents []domain.Incident) error {
	if len(incidents) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(incidents))
	for i := range incidents {
		msg, err := serializeToMessage(incidents[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish incidents: %w", err)
	}
	p.logger.Debug("incident snapshot published", "count", len(incidents))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an Incident into a Kafka message keyed by
// incident ID so recurring stories land on the same partition.
func serializeToMessage(incident domain.Incident) (kafkago.Message, error) {
	data, err := json.Marshal(incident)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(incident.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(incident.Category)},
			{Key: "published_at", Value: []byte(incident.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
