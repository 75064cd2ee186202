package usecase

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/event"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

// Audit entity types and actions.
const (
	entityLoan     = "loan"
	entityPayment  = "loan_payment"
	entityDocument = "loan_document"

	actionCreated       = "created"
	actionUpdated       = "updated"
	actionDeleted       = "deleted"
	actionStatusChanged = "status_changed"
	actionLateFee       = "late_fee_applied"
	actionProcessed     = "processed"
	actionCancelled     = "cancelled"
	actionVerified      = "verified"
)

// SideEffects fans a committed change out to audit, notification, event and
// metrics collaborators. Every failure is logged and swallowed: once the
// financial state is stored it stays stored.
type SideEffects struct {
	audit     port.AuditRecorder
	notifier  port.Notifier
	publisher port.EventPublisher
	metrics   port.MetricsRecorder
	logger    *slog.Logger
}

// NewSideEffects wires the side-channel collaborators.
func NewSideEffects(
	audit port.AuditRecorder,
	notifier port.Notifier,
	publisher port.EventPublisher,
	metrics port.MetricsRecorder,
	logger *slog.Logger,
) *SideEffects {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &SideEffects{
		audit:     audit,
		notifier:  notifier,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Audit records entry.
func (s *SideEffects) Audit(ctx context.Context, entry port.AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "audit record failed",
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"action", entry.Action,
			"error", err,
		)
	}
}

// Notify sends a borrower notification. Loans without a borrower are skipped.
// It reports whether the notification was handed off.
func (s *SideEffects) Notify(ctx context.Context, borrowerID string, kind port.NotificationKind, payload map[string]any) bool {
	if s.notifier == nil || borrowerID == "" {
		return false
	}
	if err := s.notifier.Notify(ctx, borrowerID, kind, payload); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			"borrower_id", borrowerID,
			"kind", string(kind),
			"error", err,
		)
		s.metrics.NotificationFailed(ctx, kind)
		return false
	}
	return true
}

// Publish emits domain events.
func (s *SideEffects) Publish(ctx context.Context, events ...event.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.WarnContext(ctx, "publish events failed",
			"count", len(events),
			"first_type", events[0].EventType(),
			"error", err,
		)
	}
}

// Metrics returns the engine counters.
func (s *SideEffects) Metrics() port.MetricsRecorder {
	return s.metrics
}

// Logger returns the logger side effects report to.
func (s *SideEffects) Logger() *slog.Logger {
	return s.logger
}

type noopMetrics struct{}

func (noopMetrics) PaymentProcessed(context.Context, decimal.Decimal, decimal.Decimal, decimal.Decimal) {}
func (noopMetrics) LateFeesApplied(context.Context, int) {}
func (noopMetrics) ReportGenerated(context.Context, string) {}
func (noopMetrics) NotificationFailed(context.Context, port.NotificationKind) {}
