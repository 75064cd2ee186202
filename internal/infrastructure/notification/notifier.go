// Package notification holds borrower notifier implementations that do not
// depend on a broker.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

// LogNotifier writes notifications to the log. It backs deployments without
// Kafka.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, borrowerID string, kind port.NotificationKind, payload map[string]any) error {
	n.logger.InfoContext(ctx, "borrower notification",
		"borrower_id", borrowerID,
		"kind", string(kind),
		"payload", payload,
	)
	return nil
}

// RateLimited throttles an inner notifier. Callers wait for a token, so a
// burst of reminders is spread out rather than dropped; a cancelled context
// abandons the wait.
type RateLimited struct {
	next    port.Notifier
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond notifications with the given burst. A
// non-positive rate disables throttling.
func NewRateLimited(next port.Notifier, perSecond float64, burst int) *RateLimited {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (n *RateLimited) Notify(ctx context.Context, borrowerID string, kind port.NotificationKind, payload map[string]any) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notification throttled: %w", err)
	}
	return n.next.Notify(ctx, borrowerID, kind, payload)
}
