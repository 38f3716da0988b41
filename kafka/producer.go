package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"supply-order-service/models"
)

// ProducerAPI is what the service layer depends on; tests swap in a
// recording fake.
type ProducerAPI interface {
	PublishOrderEvent(ctx context.Context, evt models.OrderEventMessage) error
	Close() error
}

// Producer publishes order lifecycle events for downstream consumers
// (notification fan-out, analytics). Publishing is best-effort and
// never fails the enclosing order operation.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: w, topic: topic}
}

func (p *Producer) PublishOrderEvent(ctx context.Context, evt models.OrderEventMessage) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.OrderID),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order event order=%s topic=%s: %w", evt.OrderID, p.topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
