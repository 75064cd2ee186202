package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConsumer(handler Handler, attempts int) *Consumer {
	return &Consumer{
		handler: handler,
		opts:    ConsumerOptions{MaxAttempts: attempts, Backoff: time.Millisecond},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestNewConsumer_RequiresGroup(t *testing.T) {
	_, err := NewConsumer(Config{Brokers: []string{"localhost:9092"}}, "loans.events",
		func(context.Context, Message) error { return nil }, ConsumerOptions{}, slog.Default())
	require.Error(t, err)
}

func TestConsumer_DeliverRetriesUntilSuccess(t *testing.T) {
	calls := 0
	c := testConsumer(func(_ context.Context, msg Message) error {
		calls++
		assert.Equal(t, "loan.created", msg.Headers["event_type"])
		if calls < 3 {
			return errors.New("downstream unavailable")
		}
		return nil
	}, 3)

	err := c.deliver(context.Background(), kafkago.Message{
		Key:     []byte("loan-1"),
		Headers: []kafkago.Header{{Key: "event_type", Value: []byte("loan.created")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConsumer_DeliverGivesUp(t *testing.T) {
	calls := 0
	boom := errors.New("bad payload")
	c := testConsumer(func(context.Context, Message) error {
		calls++
		return boom
	}, 2)

	err := c.deliver(context.Background(), kafkago.Message{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestConsumer_DeliverStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := testConsumer(func(context.Context, Message) error {
		cancel()
		return errors.New("retry me")
	}, 5)
	c.opts.Backoff = time.Hour

	err := c.deliver(ctx, kafkago.Message{})
	require.ErrorIs(t, err, context.Canceled)
}
