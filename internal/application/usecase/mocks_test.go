package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/usecase"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/event"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type mockLoanRepository struct {
	saveFunc             func(ctx context.Context, loan model.Loan) error
	findByIDFunc         func(ctx context.Context, id string) (model.Loan, error)
	findByLoanNumberFunc func(ctx context.Context, loanNumber string) (model.Loan, error)
	listFunc             func(ctx context.Context, f port.LoanFilter) ([]model.Loan, error)
	savedLoans           []model.Loan
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	m.savedLoans = append(m.savedLoans, loan)
	if m.saveFunc != nil {
		return m.saveFunc(ctx, loan)
	}
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id string) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Loan{}, apperr.NotFound("loan", id)
}

func (m *mockLoanRepository) FindByLoanNumber(ctx context.Context, loanNumber string) (model.Loan, error) {
	if m.findByLoanNumberFunc != nil {
		return m.findByLoanNumberFunc(ctx, loanNumber)
	}
	return model.Loan{}, apperr.NotFound("loan", loanNumber)
}

func (m *mockLoanRepository) List(ctx context.Context, f port.LoanFilter) ([]model.Loan, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, f)
	}
	return nil, nil
}

func (m *mockLoanRepository) Delete(_ context.Context, _ string) error { return nil }

type mockAuditRecorder struct {
	mu      sync.Mutex
	err     error
	entries []port.AuditEntry
}

func (m *mockAuditRecorder) Record(_ context.Context, entry port.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return m.err
}

func (m *mockAuditRecorder) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type notification struct {
	borrowerID string
	kind       port.NotificationKind
	payload    map[string]any
}

type mockNotifier struct {
	mu   sync.Mutex
	err  error
	sent []notification
}

func (m *mockNotifier) Notify(_ context.Context, borrowerID string, kind port.NotificationKind, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, notification{borrowerID: borrowerID, kind: kind, payload: payload})
	return nil
}

func (m *mockNotifier) kinds() []port.NotificationKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]port.NotificationKind, 0, len(m.sent))
	for _, n := range m.sent {
		out = append(out, n.kind)
	}
	return out
}

type mockEventPublisher struct {
	mu              sync.Mutex
	err             error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(_ context.Context, evts ...event.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishedEvents = append(m.publishedEvents, evts...)
	return m.err
}

func (m *mockEventPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.publishedEvents))
	for _, e := range m.publishedEvents {
		out = append(out, e.EventType())
	}
	return out
}

type mockMetrics struct {
	mu                  sync.Mutex
	processed           int
	principalCollected  decimal.Decimal
	lateFeesApplied     int
	reportsGenerated    []string
	notificationsFailed int
}

func (m *mockMetrics) PaymentProcessed(_ context.Context, principal, _, _ decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed++
	m.principalCollected = m.principalCollected.Add(principal)
}

func (m *mockMetrics) LateFeesApplied(_ context.Context, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lateFeesApplied += n
}

func (m *mockMetrics) ReportGenerated(_ context.Context, period string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reportsGenerated = append(m.reportsGenerated, period)
}

func (m *mockMetrics) NotificationFailed(_ context.Context, _ port.NotificationKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsFailed++
}

type mockReportStore struct {
	saveErr error
	reports map[string]model.MonthlyReport
}

func (m *mockReportStore) Save(_ context.Context, report model.MonthlyReport) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.reports == nil {
		m.reports = make(map[string]model.MonthlyReport)
	}
	m.reports[model.PeriodKey(report.Period.Year, time.Month(report.Period.Month))] = report
	return nil
}

func (m *mockReportStore) Load(_ context.Context, year int, month time.Month) (model.MonthlyReport, error) {
	r, ok := m.reports[model.PeriodKey(year, month)]
	if !ok {
		return model.MonthlyReport{}, apperr.NotFound("report", model.PeriodKey(year, month))
	}
	return r, nil
}

// collaborators bundles the side-channel mocks behind one SideEffects.
type collaborators struct {
	audit     *mockAuditRecorder
	notifier  *mockNotifier
	publisher *mockEventPublisher
	metrics   *mockMetrics
}

func newCollaborators() collaborators {
	return collaborators{
		audit:     &mockAuditRecorder{},
		notifier:  &mockNotifier{},
		publisher: &mockEventPublisher{},
		metrics:   &mockMetrics{},
	}
}

func (c collaborators) effects() *usecase.SideEffects {
	return usecase.NewSideEffects(c.audit, c.notifier, c.publisher, c.metrics, nil)
}
