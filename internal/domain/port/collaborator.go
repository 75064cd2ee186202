package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Audit
// ---------------------------------------------------------------------------

// AuditEntry records one state change. Old and New are JSON-encodable
// snapshots of the fields that changed.
type AuditEntry struct {
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	Old        any       `json:"old_value,omitempty"`
	New        any       `json:"new_value,omitempty"`
	Actor      string    `json:"actor"`
	At         time.Time `json:"at"`
}

// AuditRecorder stores audit entries. Failures are reported to the caller
// but never undo the change being audited.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// ---------------------------------------------------------------------------
// Notification
// ---------------------------------------------------------------------------

// NotificationKind identifies the message template sent to a borrower.
type NotificationKind string

const (
	NotifyPaymentProcessed  NotificationKind = "payment_processed"
	NotifyPaymentDue        NotificationKind = "payment_due"
	NotifyPaymentLate       NotificationKind = "payment_late"
	NotifyLoanStatusChanged NotificationKind = "loan_status_changed"
)

// Notifier delivers borrower notifications. Channel and retry policy belong
// to the implementation.
type Notifier interface {
	Notify(ctx context.Context, borrowerID string, kind NotificationKind, payload map[string]any) error
}

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

// Clock is the engine's source of "now".
type Clock interface {
	Now() time.Time
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

// MetricsRecorder receives engine counters.
type MetricsRecorder interface {
	PaymentProcessed(ctx context.Context, principal, interest, lateFee decimal.Decimal)
	LateFeesApplied(ctx context.Context, count int)
	ReportGenerated(ctx context.Context, period string)
	NotificationFailed(ctx context.Context, kind NotificationKind)
}
