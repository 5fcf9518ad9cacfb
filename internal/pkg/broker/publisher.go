package broker

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/light-bringer/tariff-billing/internal/app/billing/contracts"
)

// messageWriter is the part of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes outbox events to a Kafka topic keyed by aggregate, so
// events of one client or order stay ordered within a partition.
type Publisher struct {
	l *zap.Logger
	w messageWriter
}

// NewPublisher creates a synchronous Kafka publisher. Writes block until
// the brokers acknowledge them so a failed batch stays in the outbox.
func NewPublisher(l *zap.Logger, brokers []string, topic string) *Publisher {
	l = l.With(zap.String("component", "kafka"), zap.String("topic", topic))
	sugar := l.Sugar()

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Logger:                 kafka.LoggerFunc(sugar.Debugf),
		ErrorLogger:            kafka.LoggerFunc(sugar.Errorf),
		AllowAutoTopicCreation: true,
	}
	return newPublisher(l, w)
}

func newPublisher(l *zap.Logger, w messageWriter) *Publisher {
	return &Publisher{l: l, w: w}
}

// Publish implements contracts.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, events []*contracts.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.AggregateID),
			Value: []byte(e.Payload),
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(e.EventID)},
				{Key: "event_type", Value: []byte(e.EventType)},
			},
			Time: e.CreatedAt,
		})
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write kafka messages: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() {
	if err := p.w.Close(); err != nil {
		p.l.Error("close kafka writer", zap.Error(err))
	}
}

// LogPublisher only logs events. It stands in when no brokers are set.
type LogPublisher struct {
	l *zap.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(l *zap.Logger) *LogPublisher {
	return &LogPublisher{l: l}
}

// Publish implements contracts.EventPublisher.
func (p *LogPublisher) Publish(_ context.Context, events []*contracts.OutboxEvent) error {
	for _, e := range events {
		p.l.Info("event published",
			zap.String("event_id", e.EventID),
			zap.String("event_type", e.EventType),
			zap.String("aggregate_id", e.AggregateID),
		)
	}
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() {}
