package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// ConsumerOptions tunes redelivery of failed messages.
type ConsumerOptions struct {
	// MaxAttempts is how often a message is handed to the handler before it
	// is committed anyway. Zero means 3.
	MaxAttempts int
	// Backoff is the pause before the second attempt, doubling after each
	// failure. Zero means 200ms.
	Backoff time.Duration
}

// Consumer reads one topic as a member of the configured consumer group.
// Offsets are committed after the handler succeeds or gives up.
type Consumer struct {
	reader  *kafkago.Reader
	handler Handler
	opts    ConsumerOptions
	logger  *slog.Logger
}

// NewConsumer creates a Consumer for topic.
func NewConsumer(cfg Config, topic string, handler Handler, opts ConsumerOptions, logger *slog.Logger) (*Consumer, error) {
	if cfg.ConsumerGroup == "" {
		return nil, errors.New("kafka: consumer group is required")
	}
	dialer, err := cfg.dialer()
	if err != nil {
		return nil, err
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}

	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		StartOffset: kafkago.FirstOffset,
		Dialer:      dialer,
	})

	return &Consumer{
		reader:  r,
		handler: handler,
		opts:    opts,
		logger:  logger.With("topic", topic, "group", cfg.ConsumerGroup),
	}, nil
}

// Run consumes until ctx is done. Cancellation is a clean stop.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer starting")
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopped")
				return nil
			}
			return fmt.Errorf("kafka: fetch message: %w", err)
		}

		if err := c.deliver(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("giving up on message",
				"partition", m.Partition,
				"offset", m.Offset,
				"attempts", c.opts.MaxAttempts,
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", "partition", m.Partition, "offset", m.Offset, "error", err)
		}
	}
}

// deliver hands m to the handler, retrying with exponential backoff.
func (c *Consumer) deliver(ctx context.Context, m kafkago.Message) error {
	msg := Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}

	wait := c.opts.Backoff
	var err error
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if err = c.handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == c.opts.MaxAttempts {
			break
		}
		c.logger.Warn("handler failed, retrying", "offset", m.Offset, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("kafka: close reader: %w", err)
	}
	return nil
}
