// Package scheduler runs the loan book's periodic maintenance: the daily
// late-fee, reminder and status sweeps and the month-end report.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
)

type lateFeeUpdater interface {
	Execute(ctx context.Context, req dto.UpdateLatePaymentsRequest) (dto.UpdateLatePaymentsResponse, error)
}

type reminderSender interface {
	Execute(ctx context.Context) (dto.RemindersResponse, error)
}

type statusUpdater interface {
	Execute(ctx context.Context, actor string) (dto.LoanStatusUpdateResponse, error)
}

type reportGenerator interface {
	Execute(ctx context.Context, req dto.GenerateMonthlyReportRequest) (model.MonthlyReport, error)
}

type loanLister interface {
	Execute(ctx context.Context, req dto.ListLoansRequest) ([]dto.LoanResponse, error)
}

type performanceReader interface {
	Execute(ctx context.Context, req dto.GetLoanRequest) (dto.LoanPerformanceResponse, error)
}

// Jobs are the use cases the scheduler drives.
type Jobs struct {
	LateFees    lateFeeUpdater
	Reminders   reminderSender
	Statuses    statusUpdater
	Report      reportGenerator
	Loans       loanLister
	Performance performanceReader
}

// Config controls when the jobs fire.
type Config struct {
	// Interval is how often the loop wakes up to check the clock.
	Interval time.Duration
	// DailyAt is the UTC time of day, "HH:MM", after which the daily job runs.
	DailyAt string
	// Actor is recorded as the author of scheduled changes.
	Actor string
}

// Scheduler fires the daily job once per calendar day and the monthly job on
// the last day of each month, right after the daily one.
type Scheduler struct {
	jobs     Jobs
	clock    port.Clock
	logger   *slog.Logger
	interval time.Duration
	dailyAt  time.Duration
	actor    string

	lastDaily time.Time
}

// New validates cfg and builds a scheduler.
func New(cfg Config, jobs Jobs, clock port.Clock, logger *slog.Logger) (*Scheduler, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %s", cfg.Interval)
	}
	dailyAt, err := parseTimeOfDay(cfg.DailyAt)
	if err != nil {
		return nil, err
	}
	actor := cfg.Actor
	if actor == "" {
		actor = "system"
	}
	return &Scheduler{
		jobs:     jobs,
		clock:    clock,
		logger:   logger.With("component", "scheduler"),
		interval: cfg.Interval,
		dailyAt:  dailyAt,
		actor:    actor,
	}, nil
}

// Run checks the clock every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "scheduler started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs whatever is due at the clock's current time. It is a no-op
// before the daily trigger and after the day's run.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Now().UTC()
	today := model.DateOf(now)
	if now.Sub(today) < s.dailyAt || !today.After(s.lastDaily) {
		return
	}
	s.lastDaily = today

	s.RunDaily(ctx)
	if today.AddDate(0, 0, 1).Month() != today.Month() {
		s.RunMonthly(ctx)
	}
}

// RunDaily applies late fees, sends reminders and sweeps loan statuses. A
// failing step is logged and the next one still runs.
func (s *Scheduler) RunDaily(ctx context.Context) {
	start := time.Now()
	s.logger.InfoContext(ctx, "daily job started")

	fees, err := s.jobs.LateFees.Execute(ctx, dto.UpdateLatePaymentsRequest{Actor: s.actor})
	if err != nil {
		s.logger.ErrorContext(ctx, "update late fees failed", "error", err)
	} else {
		s.logger.InfoContext(ctx, "late fees updated", "updated", fees.Updated)
	}

	reminders, err := s.jobs.Reminders.Execute(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "payment reminders failed", "error", err)
	} else {
		s.logger.InfoContext(ctx, "payment reminders sent",
			"upcoming", reminders.Upcoming,
			"due_today", reminders.DueToday,
			"overdue", reminders.Overdue,
		)
	}

	statuses, err := s.jobs.Statuses.Execute(ctx, s.actor)
	if err != nil {
		s.logger.ErrorContext(ctx, "update loan statuses failed", "error", err)
	} else {
		s.logger.InfoContext(ctx, "loan statuses updated", "paid", statuses.Paid, "defaulted", statuses.Defaulted)
	}

	s.logger.InfoContext(ctx, "daily job finished", "duration", time.Since(start).String())
}

// RunMonthly generates the current month's report and logs the performance
// of every open loan. Loans whose metrics cannot be computed are skipped.
func (s *Scheduler) RunMonthly(ctx context.Context) {
	s.logger.InfoContext(ctx, "monthly job started")

	report, err := s.jobs.Report.Execute(ctx, dto.GenerateMonthlyReportRequest{})
	if err != nil {
		s.logger.ErrorContext(ctx, "monthly report failed", "error", err)
	} else {
		s.logger.InfoContext(ctx, "monthly report generated",
			"period", model.PeriodKey(report.Period.Year, time.Month(report.Period.Month)),
			"active_loans", report.LoanSummary.ActiveLoans,
		)
	}

	loans, err := s.jobs.Loans.Execute(ctx, dto.ListLoansRequest{
		Statuses: []string{valueobject.LoanStatusActive.String(), valueobject.LoanStatusDefault.String()},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "list open loans failed", "error", err)
		return
	}
	for _, loan := range loans {
		perf, err := s.jobs.Performance.Execute(ctx, dto.GetLoanRequest{LoanID: loan.ID})
		if err != nil {
			s.logger.WarnContext(ctx, "loan performance failed", "loan_id", loan.ID, "error", err)
			continue
		}
		s.logger.InfoContext(ctx, "loan performance",
			"loan_id", loan.ID,
			"loan_number", loan.LoanNumber,
			"on_time_rate", perf.Metrics.OnTimePaymentRate.String(),
			"late_payments", perf.Metrics.LatePayments,
			"progress", perf.Metrics.LoanProgress.String(),
		)
	}
}

func parseTimeOfDay(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("scheduler daily_at %q: want HH:MM", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
