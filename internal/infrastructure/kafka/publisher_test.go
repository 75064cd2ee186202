package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/event"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/events"
	pkgkafka "github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/kafka"
)

type sent struct {
	topic    string
	messages []pkgkafka.Message
}

type fakeProducer struct {
	err  error
	sent []sent
}

func (f *fakeProducer) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{topic: topic, messages: messages})
	return nil
}

var at = time.Date(2024, time.February, 14, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEventPublisher_Publish(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewEventPublisher(fp, "loans.events", discardLogger())

	evt := event.NewLoanStatusChanged("loan-1", "ACTIVE", "PAID", decimal.Zero, at)
	require.NoError(t, pub.Publish(context.Background(), evt))

	require.Len(t, fp.sent, 1)
	assert.Equal(t, "loans.events", fp.sent[0].topic)
	require.Len(t, fp.sent[0].messages, 1)

	msg := fp.sent[0].messages[0]
	assert.Equal(t, "loan-1", string(msg.Key))
	assert.Equal(t, "loan.status_changed", msg.Headers["event_type"])
	assert.Equal(t, evt.EventID(), msg.Headers["event_id"])
	assert.Equal(t, "Loan", msg.Headers["aggregate_type"])

	var env events.Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "loan.status_changed", env.EventType)
	assert.True(t, env.CreatedAt.Equal(at))

	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &body))
	assert.Equal(t, "PAID", body["to"])
}

func TestEventPublisher_NothingToPublish(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewEventPublisher(fp, "loans.events", discardLogger())

	require.NoError(t, pub.Publish(context.Background()))
	assert.Empty(t, fp.sent)
}

func TestEventPublisher_ProducerError(t *testing.T) {
	fp := &fakeProducer{err: errors.New("broker down")}
	pub := NewEventPublisher(fp, "loans.events", discardLogger())

	err := pub.Publish(context.Background(), event.NewLoanStatusChanged("loan-1", "ACTIVE", "DEFAULT", decimal.Zero, at))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loans.events")
}

func TestAuditRecorder_Record(t *testing.T) {
	fp := &fakeProducer{}
	rec := NewAuditRecorder(fp, "loans.audit")

	err := rec.Record(context.Background(), port.AuditEntry{
		EntityType: "loan_payment",
		EntityID:   "pay-1",
		Action:     "processed",
		Old:        map[string]any{"status": "PENDING"},
		New:        map[string]any{"status": "COMPLETED"},
		Actor:      "clerk",
		At:         at,
	})
	require.NoError(t, err)

	require.Len(t, fp.sent, 1)
	msg := fp.sent[0].messages[0]
	assert.Equal(t, "pay-1", string(msg.Key))
	assert.Equal(t, "processed", msg.Headers["action"])
	assert.JSONEq(t, `{
		"entity_type": "loan_payment",
		"entity_id": "pay-1",
		"action": "processed",
		"old_value": {"status": "PENDING"},
		"new_value": {"status": "COMPLETED"},
		"actor": "clerk",
		"at": "2024-02-14T12:00:00Z"
	}`, string(msg.Value))
}

func TestNotifier_Notify(t *testing.T) {
	fp := &fakeProducer{}
	n := NewNotifier(fp, "loans.notifications")
	n.now = func() time.Time { return at }

	err := n.Notify(context.Background(), "borrower-1", port.NotifyPaymentDue, map[string]any{"amount": "1110.21"})
	require.NoError(t, err)

	msg := fp.sent[0].messages[0]
	assert.Equal(t, "borrower-1", string(msg.Key))
	assert.Equal(t, "payment_due", msg.Headers["kind"])
	assert.JSONEq(t, `{
		"borrower_id": "borrower-1",
		"kind": "payment_due",
		"payload": {"amount": "1110.21"},
		"queued_at": "2024-02-14T12:00:00Z"
	}`, string(msg.Value))

	fp.err = errors.New("broker down")
	err = n.Notify(context.Background(), "borrower-1", port.NotifyPaymentLate, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment_late")
}
