// Package kafka publishes encoded events to a Kafka topic.
package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

type Producer struct {
	writer *kafka.Writer
}

// NewProducer builds a synchronous, all-acks producer. Messages are
// partitioned by key, so events for one symbol keep their order.
func NewProducer(cfg Config) *Producer {
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: cfg.BatchTimeout,
		},
	}
}

// Header is a message header.
type Header = kafka.Header

func (p *Producer) Publish(
	ctx context.Context,
	key []byte,
	value []byte,
	headers ...Header,
) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     key,
		Value:   value,
		Headers: headers,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
