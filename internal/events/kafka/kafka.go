// Package kafka publishes and consumes transaction events over Kafka.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"gofinances/internal/events"
	applog "gofinances/internal/log"
)

const (
	handleAttempts = 3
	retryDelay     = 500 * time.Millisecond
)

var (
	_ events.Publisher = (*Publisher)(nil)
	_ events.Consumer  = (*Consumer)(nil)
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes TransactionRecorded events keyed by user ID, so one
// user's events stay ordered within a partition.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *applog.Logger
}

func NewPublisher(brokers []string, topic string, logger *applog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, topic, logger)
}

func newPublisher(w messageWriter, topic string, logger *applog.Logger) *Publisher {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Publisher{writer: w, topic: topic, logger: logger.WithComponent(applog.ComponentEvents)}
}

func (p *Publisher) PublishTransactionRecorded(ctx context.Context, e events.TransactionRecorded) error {
	body, err := e.Marshal()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(e.UserID),
		Value: body,
		Time:  e.RecordedAt,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "transaction-id", Value: []byte(e.ID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message to %s: %w", p.topic, err)
	}
	p.logger.InfoContext(ctx, "Published transaction event",
		applog.FieldTransactionID, e.ID,
		applog.FieldUserID, e.UserID,
		applog.FieldOperation, applog.OpPublish,
		"topic", p.topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Consumer reads TransactionRecorded events as part of a consumer group.
// Offsets are committed after the handler succeeds or gives up.
type Consumer struct {
	reader messageReader
	logger *applog.Logger
}

func NewConsumer(brokers []string, topic, groupID string, logger *applog.Logger) *Consumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(r, logger)
}

func newConsumer(r messageReader, logger *applog.Logger) *Consumer {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Consumer{reader: r, logger: logger.WithComponent(applog.ComponentEvents)}
}

func (c *Consumer) Consume(ctx context.Context, h events.Handler) error {
	c.logger.InfoContext(ctx, "Started consuming transaction events")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := c.handle(ctx, msg, h); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

// handle returns an error only when ctx ends; poison messages are logged and skipped.
func (c *Consumer) handle(ctx context.Context, msg kafkago.Message, h events.Handler) error {
	e, err := events.Unmarshal(msg.Value)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to decode message",
			applog.FieldError, err.Error(),
			applog.FieldOperation, applog.OpConsume,
			"partition", msg.Partition,
			"offset", msg.Offset)
		return nil
	}

	for attempt := 1; ; attempt++ {
		err := h(ctx, e)
		if err == nil {
			return nil
		}
		c.logger.ErrorContext(ctx, "Failed to handle message",
			applog.FieldError, err.Error(),
			applog.FieldTransactionID, e.ID,
			"attempt", attempt)
		if attempt >= handleAttempts {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
