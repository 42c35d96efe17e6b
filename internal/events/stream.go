package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// StreamProducer mirrors message lifecycle events onto a Kafka topic for
// downstream consumers (notifications, analytics). Optional: a nil producer
// is a no-op, and stream failures never fail the write.
type StreamProducer struct {
	writer *kafka.Writer
}

func NewStreamProducer(brokers []string, topic string) *StreamProducer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &StreamProducer{writer: w}
}

func (p *StreamProducer) Publish(ctx context.Context, key string, payload any) error {
	if p == nil || p.writer == nil {
		return nil
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := kafka.Message{Key: []byte(key), Value: value, Time: time.Now()}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *StreamProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
