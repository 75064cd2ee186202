// Package metrics records loan engine counters through OpenTelemetry.
package metrics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

// LoanMetrics implements port.MetricsRecorder.
type LoanMetrics struct {
	paymentsProcessed   metric.Int64Counter
	principalCollected  metric.Float64Counter
	interestCollected   metric.Float64Counter
	lateFeesCollected   metric.Float64Counter
	lateFeesApplied     metric.Int64Counter
	reportsGenerated    metric.Int64Counter
	notificationsFailed metric.Int64Counter
}

// NewLoanMetrics registers the engine's instruments on provider.
func NewLoanMetrics(provider metric.MeterProvider) (*LoanMetrics, error) {
	meter := provider.Meter("rentaldesk/loans")
	m := &LoanMetrics{}
	var err error

	if m.paymentsProcessed, err = meter.Int64Counter("loans.payments.processed",
		metric.WithDescription("Loan payments completed")); err != nil {
		return nil, fmt.Errorf("payments processed counter: %w", err)
	}
	if m.principalCollected, err = meter.Float64Counter("loans.principal.collected",
		metric.WithDescription("Principal collected by completed payments"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, fmt.Errorf("principal counter: %w", err)
	}
	if m.interestCollected, err = meter.Float64Counter("loans.interest.collected",
		metric.WithDescription("Interest collected by completed payments"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, fmt.Errorf("interest counter: %w", err)
	}
	if m.lateFeesCollected, err = meter.Float64Counter("loans.late_fees.collected",
		metric.WithDescription("Late fees collected by completed payments"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, fmt.Errorf("late fee counter: %w", err)
	}
	if m.lateFeesApplied, err = meter.Int64Counter("loans.late_fees.applied",
		metric.WithDescription("Pending payments whose late fee changed")); err != nil {
		return nil, fmt.Errorf("late fees applied counter: %w", err)
	}
	if m.reportsGenerated, err = meter.Int64Counter("loans.reports.generated",
		metric.WithDescription("Monthly reports generated")); err != nil {
		return nil, fmt.Errorf("reports counter: %w", err)
	}
	if m.notificationsFailed, err = meter.Int64Counter("loans.notifications.failed",
		metric.WithDescription("Borrower notifications that could not be delivered")); err != nil {
		return nil, fmt.Errorf("notifications counter: %w", err)
	}
	return m, nil
}

func (m *LoanMetrics) PaymentProcessed(ctx context.Context, principal, interest, lateFee decimal.Decimal) {
	m.paymentsProcessed.Add(ctx, 1)
	m.principalCollected.Add(ctx, principal.InexactFloat64())
	m.interestCollected.Add(ctx, interest.InexactFloat64())
	if lateFee.IsPositive() {
		m.lateFeesCollected.Add(ctx, lateFee.InexactFloat64())
	}
}

func (m *LoanMetrics) LateFeesApplied(ctx context.Context, count int) {
	if count > 0 {
		m.lateFeesApplied.Add(ctx, int64(count))
	}
}

func (m *LoanMetrics) ReportGenerated(ctx context.Context, period string) {
	m.reportsGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("period", period)))
}

func (m *LoanMetrics) NotificationFailed(ctx context.Context, kind port.NotificationKind) {
	m.notificationsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}
