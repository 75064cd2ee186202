package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/event"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/events"
	pkgkafka "github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/kafka"
)

// producer is the part of pkgkafka.Producer the adapters use.
type producer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// EventPublisher implements port.EventPublisher by writing event envelopes
// to Kafka, keyed by aggregate id.
type EventPublisher struct {
	producer producer
	topic    string
	logger   *slog.Logger
}

// NewEventPublisher creates a publisher targeting the given producer and topic.
func NewEventPublisher(producer producer, topic string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish serialises and sends domain events to Kafka.
func (p *EventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(evts))
	for _, evt := range evts {
		env, err := events.NewEnvelope(evt)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("marshal envelope %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"topic", p.topic,
			"payload_size", len(payload),
		)

		messages = append(messages, pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type":     evt.EventType(),
				"event_id":       evt.EventID(),
				"aggregate_type": evt.AggregateType(),
			},
		})
	}

	if len(messages) == 0 {
		return nil
	}
	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}

// AuditRecorder implements port.AuditRecorder on an append-only Kafka topic.
type AuditRecorder struct {
	producer producer
	topic    string
}

// NewAuditRecorder creates an audit recorder writing to topic.
func NewAuditRecorder(producer producer, topic string) *AuditRecorder {
	return &AuditRecorder{producer: producer, topic: topic}
}

func (r *AuditRecorder) Record(ctx context.Context, entry port.AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	err = r.producer.Publish(ctx, r.topic, pkgkafka.Message{
		Key:   []byte(entry.EntityID),
		Value: payload,
		Headers: map[string]string{
			"entity_type": entry.EntityType,
			"action":      entry.Action,
		},
	})
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Notification is the wire form of a borrower notification. Delivery
// (email, SMS) is left to the consumers of the topic.
type Notification struct {
	BorrowerID string                `json:"borrower_id"`
	Kind       port.NotificationKind `json:"kind"`
	Payload    map[string]any        `json:"payload"`
	QueuedAt   time.Time             `json:"queued_at"`
}

// Notifier implements port.Notifier by queueing notifications on Kafka,
// keyed by borrower.
type Notifier struct {
	producer producer
	topic    string
	now      func() time.Time
}

// NewNotifier creates a notifier writing to topic.
func NewNotifier(producer producer, topic string) *Notifier {
	return &Notifier{producer: producer, topic: topic, now: time.Now}
}

func (n *Notifier) Notify(ctx context.Context, borrowerID string, kind port.NotificationKind, payload map[string]any) error {
	body, err := json.Marshal(Notification{
		BorrowerID: borrowerID,
		Kind:       kind,
		Payload:    payload,
		QueuedAt:   n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	err = n.producer.Publish(ctx, n.topic, pkgkafka.Message{
		Key:     []byte(borrowerID),
		Value:   body,
		Headers: map[string]string{"kind": string(kind)},
	})
	if err != nil {
		return fmt.Errorf("queue %s notification: %w", kind, err)
	}
	return nil
}
