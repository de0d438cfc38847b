package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
	Close() error
}

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JSON encoded events keyed by order id.
type KafkaPublisher struct {
	writer kafkaMessageWriter
	logger *slog.Logger
}

// NewKafkaPublisher creates a synchronous writer that waits for all replicas.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		logger: logger,
	}
}

func newKafkaPublisherWith(w kafkaMessageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logger}
}

// Publish encodes event and writes it to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, event model.OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	p.logger.Debug("order event published",
		slog.String("type", string(event.Type)),
		slog.Int64("order_id", event.OrderID),
	)
	return nil
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher records events in the application log when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event model.OrderEvent) error {
	p.logger.Info("order event",
		slog.String("type", string(event.Type)),
		slog.Int64("order_id", event.OrderID),
		slog.String("order_number", event.OrderNumber),
		slog.String("status", string(event.Status)),
		slog.String("partner_email", event.PartnerEmail),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
