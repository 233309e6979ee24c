package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaEmitter implements Emitter using segmentio/kafka-go.
type KafkaEmitter struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaEmitter creates a Kafka emitter that writes domain events to the given topic.
// Returns (nil, nil) when brokers or topic are empty so callers can treat events as
// disabled. Call Close when shutting down.
func NewKafkaEmitter(brokers []string, topic string) (*KafkaEmitter, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaEmitter{writer: writer, topic: topic}, nil
}

// Emit serializes the event as JSON and writes it to the Kafka topic, keyed by
// subject so events for one entity stay ordered. Uses a short timeout so slow
// Kafka does not block callers indefinitely.
func (e *KafkaEmitter) Emit(ctx context.Context, event *Event) error {
	if e == nil || e.writer == nil || event == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = e.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.Subject),
		Value: payload,
	})
	if err != nil {
		log.Printf("events: kafka emit failed: %v", err)
		return err
	}
	return nil
}

// Close closes the Kafka writer. Safe to call multiple times.
func (e *KafkaEmitter) Close() error {
	if e == nil || e.writer == nil {
		return nil
	}
	return e.writer.Close()
}
