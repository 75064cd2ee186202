package events

import (
	"encoding/json"
	"testing"
	"time"
)

type paymentSettled struct {
	BaseEvent
	Amount string `json:"amount"`
}

func TestNewBaseEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("UTC-5", -5*3600))
	event := NewBaseEvent("loan.payment.processed", "pay-1", "LoanPayment", at)

	if event.EventID() == "" {
		t.Error("expected non-empty event ID")
	}
	if event.EventType() != "loan.payment.processed" {
		t.Errorf("expected event type %q, got %q", "loan.payment.processed", event.EventType())
	}
	if event.AggregateID() != "pay-1" {
		t.Errorf("expected aggregate ID pay-1, got %v", event.AggregateID())
	}
	if event.AggregateType() != "LoanPayment" {
		t.Errorf("expected aggregate type LoanPayment, got %q", event.AggregateType())
	}
	if event.OccurredAt().Location() != time.UTC || !event.OccurredAt().Equal(at) {
		t.Errorf("expected occurredAt %v in UTC, got %v", at, event.OccurredAt())
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
	var _ DomainEvent = paymentSettled{}
}

func TestNewEnvelope(t *testing.T) {
	event := paymentSettled{
		BaseEvent: NewBaseEvent("loan.payment.processed", "pay-2", "LoanPayment", time.Now()),
		Amount:    "1110.21",
	}

	env, err := NewEnvelope(event)
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}
	if env.ID != event.EventID() {
		t.Errorf("expected envelope ID %v, got %v", event.EventID(), env.ID)
	}
	if env.EventType != "loan.payment.processed" {
		t.Errorf("unexpected event type %q", env.EventType)
	}

	var parsed map[string]any
	if err := json.Unmarshal(env.Payload, &parsed); err != nil {
		t.Fatalf("expected valid JSON payload, got error: %v", err)
	}
	if parsed["amount"] != "1110.21" {
		t.Errorf("expected amount in payload, got %v", parsed["amount"])
	}
	if parsed["aggregate_id"] != "pay-2" {
		t.Errorf("expected header fields in payload, got %v", parsed)
	}
}

func TestBatch(t *testing.T) {
	at := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	first := NewBaseEvent("loan.status_changed", "loan-1", "Loan", at)
	second := NewBaseEvent("payment.completed", "pay-1", "LoanPayment", at)

	var batch Batch
	batch.Add(first, nil)
	batch.Add(second, first)

	if batch.Len() != 2 {
		t.Fatalf("expected 2 events, got %d", batch.Len())
	}

	drained := batch.Drain()
	if len(drained) != 2 {
		t.Fatalf("expected Drain to return 2 events, got %d", len(drained))
	}
	if drained[0].EventID() != first.ID || drained[1].EventID() != second.ID {
		t.Errorf("expected insertion order, got %q then %q", drained[0].EventType(), drained[1].EventType())
	}
	if batch.Len() != 0 {
		t.Errorf("expected empty batch after Drain, got %d", batch.Len())
	}

	batch.Add(first)
	if batch.Len() != 1 {
		t.Errorf("expected a drained batch to accept earlier ids again, got %d", batch.Len())
	}
	if (&Batch{}).Drain() != nil {
		t.Error("expected nil from Drain on an empty batch")
	}
}
