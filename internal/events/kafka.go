package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/automarket/automarket-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
)

const (
	writeTimeout = 5 * time.Second
	batchTimeout = 10 * time.Millisecond
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events synchronously to one topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	logger.Info("Initializing Kafka publisher", map[string]interface{}{
		"brokers": brokers,
		"topic":   topic,
	})

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           batchTimeout,
			WriteTimeout:           writeTimeout,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.ListingID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", p.topic, err)
	}

	logger.Debug("Event published", map[string]interface{}{
		"type":       e.Type,
		"listing_id": e.ListingID,
	})
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// PublishOrLog publishes e and logs failures instead of returning them.
// Event delivery never fails the operation that produced the event.
func PublishOrLog(ctx context.Context, p Publisher, e Event) {
	if err := p.Publish(ctx, e); err != nil {
		logger.Error("Failed to publish event", err, map[string]interface{}{
			"type":       e.Type,
			"listing_id": e.ListingID,
		})
	}
}
