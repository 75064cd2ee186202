package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/scheduler"
)

type movableClock struct{ now time.Time }

func (c *movableClock) Now() time.Time { return c.now }

type recorder struct {
	calls []string

	lateFeesErr error
	perfErr     map[string]error
}

func (r *recorder) jobs() scheduler.Jobs {
	return scheduler.Jobs{
		LateFees:    lateFeesFunc{r},
		Reminders:   remindersFunc{r},
		Statuses:    statusesFunc{r},
		Report:      reportFunc{r},
		Loans:       loansFunc{r},
		Performance: performanceFunc{r},
	}
}

type lateFeesFunc struct{ *recorder }

func (f lateFeesFunc) Execute(_ context.Context, req dto.UpdateLatePaymentsRequest) (dto.UpdateLatePaymentsResponse, error) {
	f.calls = append(f.calls, "late_fees:"+req.Actor)
	return dto.UpdateLatePaymentsResponse{Updated: 2}, f.lateFeesErr
}

type remindersFunc struct{ *recorder }

func (f remindersFunc) Execute(context.Context) (dto.RemindersResponse, error) {
	f.calls = append(f.calls, "reminders")
	return dto.RemindersResponse{Upcoming: 1}, nil
}

type statusesFunc struct{ *recorder }

func (f statusesFunc) Execute(_ context.Context, actor string) (dto.LoanStatusUpdateResponse, error) {
	f.calls = append(f.calls, "statuses:"+actor)
	return dto.LoanStatusUpdateResponse{}, nil
}

type reportFunc struct{ *recorder }

func (f reportFunc) Execute(_ context.Context, req dto.GenerateMonthlyReportRequest) (model.MonthlyReport, error) {
	f.calls = append(f.calls, "report")
	return model.MonthlyReport{Period: model.ReportPeriod{Year: 2024, Month: 3}}, nil
}

type loansFunc struct{ *recorder }

func (f loansFunc) Execute(_ context.Context, req dto.ListLoansRequest) ([]dto.LoanResponse, error) {
	f.calls = append(f.calls, "loans")
	return []dto.LoanResponse{{ID: "l-1"}, {ID: "l-2"}}, nil
}

type performanceFunc struct{ *recorder }

func (f performanceFunc) Execute(_ context.Context, req dto.GetLoanRequest) (dto.LoanPerformanceResponse, error) {
	f.calls = append(f.calls, "performance:"+req.LoanID)
	if err := f.perfErr[req.LoanID]; err != nil {
		return dto.LoanPerformanceResponse{}, err
	}
	return dto.LoanPerformanceResponse{
		LoanID:  req.LoanID,
		Metrics: dto.PerformanceMetrics{OnTimePaymentRate: decimal.NewFromInt(100)},
	}, nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newScheduler(t *testing.T, r *recorder, clock *movableClock) *scheduler.Scheduler {
	t.Helper()
	s, err := scheduler.New(scheduler.Config{Interval: time.Minute, DailyAt: "00:05", Actor: "cron"}, r.jobs(), clock, discard())
	require.NoError(t, err)
	return s
}

func TestTick_DailyOncePerDay(t *testing.T) {
	r := &recorder{}
	clock := &movableClock{now: time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC)}
	s := newScheduler(t, r, clock)
	ctx := context.Background()

	s.Tick(ctx)
	assert.Empty(t, r.calls, "before daily_at")

	clock.now = clock.now.Add(5 * time.Minute)
	s.Tick(ctx)
	assert.Equal(t, []string{"late_fees:cron", "reminders", "statuses:cron"}, r.calls)

	clock.now = clock.now.Add(6 * time.Hour)
	s.Tick(ctx)
	assert.Len(t, r.calls, 3, "already ran today")

	clock.now = clock.now.AddDate(0, 0, 1)
	s.Tick(ctx)
	assert.Len(t, r.calls, 6)
}

func TestTick_MonthlyOnLastDay(t *testing.T) {
	r := &recorder{}
	clock := &movableClock{now: time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)}
	s := newScheduler(t, r, clock)

	s.Tick(context.Background())
	assert.Equal(t, []string{
		"late_fees:cron", "reminders", "statuses:cron",
		"report", "loans", "performance:l-1", "performance:l-2",
	}, r.calls)
}

func TestRunDaily_ContinuesAfterFailure(t *testing.T) {
	r := &recorder{lateFeesErr: errors.New("db down")}
	s := newScheduler(t, r, &movableClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)})

	s.RunDaily(context.Background())
	assert.Equal(t, []string{"late_fees:cron", "reminders", "statuses:cron"}, r.calls)
}

func TestRunMonthly_SkipsFailedLoans(t *testing.T) {
	r := &recorder{perfErr: map[string]error{"l-1": errors.New("boom")}}
	s := newScheduler(t, r, &movableClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)})

	s.RunMonthly(context.Background())
	assert.Equal(t, []string{"report", "loans", "performance:l-1", "performance:l-2"}, r.calls)
}

func TestRun_StopsOnCancel(t *testing.T) {
	r := &recorder{}
	s := newScheduler(t, r, &movableClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestNew_Validation(t *testing.T) {
	r := &recorder{}
	clock := &movableClock{}

	_, err := scheduler.New(scheduler.Config{Interval: 0}, r.jobs(), clock, discard())
	assert.Error(t, err)

	_, err = scheduler.New(scheduler.Config{Interval: time.Minute, DailyAt: "25:99"}, r.jobs(), clock, discard())
	assert.Error(t, err)
}
