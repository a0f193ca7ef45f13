package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher ships event envelopes to a single topic. Writes are async;
// delivery failures are logged and never reach the caller, so a broker outage
// cannot fail a checkout.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				slog.Error("event delivery failed", "error", err, "count", len(messages))
			}
		},
	}
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload any) {
	env := NewEnvelope(eventType, payload)
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("failed to encode event", "event_type", eventType, "error", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eventType),
		Value: data,
		Time:  env.OccurredAt,
	})
	if err != nil {
		slog.Error("failed to enqueue event", "event_type", eventType, "error", err)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when no brokers are configured and in
// unit tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) {}
